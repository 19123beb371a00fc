// Package resolve maps unit and spell names from parsed intents to live
// units and spell definitions.
package resolve

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Result holds the resolved references of a cast intent.
type Result struct {
	Actor  *world.Unit
	Spell  *types.SpellDef
	Target *world.Unit
}

// AmbiguityError indicates multiple units or spells matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s named %q", e.Kind, e.Name)
}

// Resolve maps the actor, spell and target names of a cast intent. An
// empty actor name resolves to def, which may be nil.
func Resolve(m *world.Map, defs *state.Defs, intent types.Intent, def *world.Unit) (Result, error) {
	res := Result{Actor: def}
	var err error

	if intent.Actor != "" {
		if res.Actor, err = Unit(m, intent.Actor); err != nil {
			return res, err
		}
	}
	if intent.Object != "" {
		if res.Spell, err = Spell(defs, intent.Object); err != nil {
			return res, err
		}
	}
	if intent.Target != "" {
		if res.Target, err = Unit(m, intent.Target); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Unit resolves a unit by "#guid", exact name, a word of its name, or
// its name with spaces written as underscores.
func Unit(m *world.Map, name string) (*world.Unit, error) {
	if g, ok := parseID(name); ok {
		if u := m.Unit(types.GUID(g)); u != nil {
			return u, nil
		}
		return nil, &NotFoundError{Kind: "unit", Name: name}
	}

	nameLower := strings.ToLower(name)
	var exact, partial []*world.Unit
	for _, u := range m.Units() {
		switch matchName(u.Name, nameLower) {
		case matchExact:
			exact = append(exact, u)
		case matchPartial:
			partial = append(partial, u)
		}
	}
	matches := exact
	if len(matches) == 0 {
		matches = partial
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "unit", Name: name}
	case 1:
		return matches[0], nil
	}
	cands := make([]string, len(matches))
	for i, u := range matches {
		cands[i] = fmt.Sprintf("%s #%d", u.Name, u.GUID)
	}
	return nil, &AmbiguityError{Name: name, Candidates: cands}
}

// Spell resolves a spell by numeric ID or name, with the same matching
// rules as Unit.
func Spell(defs *state.Defs, name string) (*types.SpellDef, error) {
	if id, ok := parseID(name); ok {
		if s := defs.Spell(uint32(id)); s != nil {
			return s, nil
		}
		return nil, &NotFoundError{Kind: "spell", Name: name}
	}

	ids := make([]uint32, 0, len(defs.Spells))
	for id := range defs.Spells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	nameLower := strings.ToLower(name)
	var exact, partial []*types.SpellDef
	for _, id := range ids {
		s := defs.Spells[id]
		switch matchName(s.Name, nameLower) {
		case matchExact:
			exact = append(exact, s)
		case matchPartial:
			partial = append(partial, s)
		}
	}
	matches := exact
	if len(matches) == 0 {
		matches = partial
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "spell", Name: name}
	case 1:
		return matches[0], nil
	}
	cands := make([]string, len(matches))
	for i, s := range matches {
		cands[i] = fmt.Sprintf("%s #%d", s.Name, s.ID)
	}
	return nil, &AmbiguityError{Name: name, Candidates: cands}
}

type match int

const (
	matchNone match = iota
	matchPartial
	matchExact
)

// matchName compares a display name with a lowercased query. A query
// equal to one word of the name is a partial match; "dire_wolf" is an
// exact match for "Dire Wolf".
func matchName(display, query string) match {
	lower := strings.ToLower(display)
	if lower == query || strings.ReplaceAll(lower, " ", "_") == query {
		return matchExact
	}
	for _, word := range strings.Fields(lower) {
		if word == query {
			return matchPartial
		}
	}
	return matchNone
}

// parseID accepts "#12" or "12".
func parseID(s string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	return n, err == nil
}
