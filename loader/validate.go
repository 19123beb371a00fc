package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := check(defs)

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// check runs every rule and returns the collected findings.
func check(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.World.Title == "" {
		ve.errorf("World.title is required")
	}

	units := map[string]bool{}
	for _, u := range defs.Units {
		if u.Name == "" {
			ve.errorf("unit with entry %d has no name", u.Entry)
			continue
		}
		if units[u.Name] {
			ve.errorf("duplicate unit name %q", u.Name)
		}
		units[u.Name] = true
	}
	unitRef := func(what, name string) {
		if name != "" && !units[name] {
			ve.errorf("%s references undefined unit %q", what, name)
		}
	}
	spellRef := func(what string, id uint32) {
		if id != 0 && defs.Spells[id] == nil {
			ve.errorf("%s references undefined spell %d", what, id)
		}
	}

	if defs.World.Player != "" {
		unitRef("World.player", defs.World.Player)
	}
	if defs.World.MinGCD > defs.World.MaxGCD {
		ve.errorf("World.min_gcd %d exceeds max_gcd %d", defs.World.MinGCD, defs.World.MaxGCD)
	}

	for _, id := range sortedSpellIDs(defs) {
		validateSpell(defs.Spells[id], spellRef, ve)
	}

	for _, u := range defs.Units {
		where := fmt.Sprintf("unit %q", u.Name)
		unitRef(where+" owner", u.Owner)
		unitRef(where+" pet", u.Pet)
		unitRef(where+" charm", u.Charm)
		if u.Charm == u.Name && u.Name != "" {
			ve.errorf("%s charms itself", where)
		}
		if u.MaxHealth > 0 && u.Health > u.MaxHealth {
			ve.errorf("%s health %d exceeds max_health %d", where, u.Health, u.MaxHealth)
		}
		for p, v := range u.Power {
			if limit := u.MaxPower[p]; v > limit {
				ve.errorf("%s power %d exceeds its maximum %d", where, v, limit)
			}
		}
		for _, a := range u.Auras {
			unitRef(where+" aura caster", a.Caster)
			if a.Spell == 0 {
				ve.errorf("%s has an aura without a spell", where)
			} else if defs.Spells[a.Spell] == nil {
				ve.warnf("%s aura spell %d is not defined", where, a.Spell)
			}
			if a.EffIndex < 0 || a.EffIndex >= types.MaxEffectIndex {
				ve.errorf("%s aura eff_index %d out of range", where, a.EffIndex)
			}
		}
	}

	for _, g := range defs.GameObjects {
		unitRef(fmt.Sprintf("game object %q owner", g.Name), g.Owner)
		if g.Type == types.GOTypeSpellFocus && g.FocusID == 0 {
			ve.warnf("spell focus %q has no focus_id", g.Name)
		}
	}

	for _, it := range defs.Items {
		where := fmt.Sprintf("item %q", it.Name)
		if it.Entry == 0 {
			ve.errorf("%s has no entry", where)
		}
		unitRef(where+" owner", it.Owner)
		spellRef(where, it.Spell)
		if it.Owner == "" {
			ve.warnf("%s has no owner and will never be used", where)
		}
	}

	for _, st := range defs.ScriptTargets {
		spellRef("script target", st.Spell)
		if st.Spell == 0 {
			ve.errorf("script target without a spell")
		}
	}
	for id := range defs.TeleportPositions {
		spellRef("teleport position", id)
		if id == 0 {
			ve.errorf("teleport position without a spell")
		}
	}

	return ve
}

func validateSpell(s *types.SpellDef, spellRef func(string, uint32), ve *ValidationError) {
	where := fmt.Sprintf("spell %d", s.ID)
	if s.Name == "" {
		ve.errorf("%s has no name", where)
	} else {
		where = fmt.Sprintf("spell %d %q", s.ID, s.Name)
	}
	if s.Range.Min > s.Range.Max {
		ve.errorf("%s range min %.1f exceeds max %.1f", where, s.Range.Min, s.Range.Max)
	}
	if s.CastTimeMS < 0 || s.RecoveryTimeMS < 0 || s.CategoryRecoveryTimeMS < 0 || s.StartRecoveryTimeMS < 0 {
		ve.errorf("%s has a negative time", where)
	}
	if s.PowerCostPct < 0 || s.PowerCostPct > 100 {
		ve.errorf("%s power_cost_pct %d out of range", where, s.PowerCostPct)
	}
	if state.IsChanneled(s) && s.DurationMS <= 0 {
		ve.errorf("%s is channeled but has no duration", where)
	}

	empty := true
	for i, e := range s.Effects {
		if e.Type == types.EffectNone {
			continue
		}
		empty = false
		ew := fmt.Sprintf("%s effect %d", where, i)
		spellRef(ew+" trigger_spell", e.TriggerSpell)
		if e.TriggerSpell == s.ID {
			ve.warnf("%s triggers itself", ew)
		}
		if (e.Type == types.EffectApplyAura || state.IsAreaAuraEffect(e.Type)) && e.Aura == types.AuraNone {
			ve.errorf("%s applies an aura without an aura type", ew)
		}
		if e.Radius < 0 || e.ChainTargets < 0 {
			ve.errorf("%s has a negative radius or chain count", ew)
		}
	}
	if empty {
		ve.warnf("%s has no effects", where)
	}

	for _, ct := range s.TriggerChance {
		spellRef(where+" trigger", ct.Spell)
		if ct.Chance <= 0 || ct.Chance > 100 {
			ve.errorf("%s trigger chance %.1f out of range", where, ct.Chance)
		}
	}
	for _, id := range s.LinkedOnHit {
		if id == 0 {
			ve.errorf("%s links spell 0", where)
			continue
		}
		if id < 0 {
			id = -id
		}
		spellRef(where+" linked spell", uint32(id))
	}
	for _, r := range s.Reagents {
		if r.Item == 0 {
			ve.errorf("%s has a reagent without an item", where)
		}
	}
}

func sortedSpellIDs(defs *state.Defs) []uint32 {
	ids := make([]uint32, 0, len(defs.Spells))
	for id := range defs.Spells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
