package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/parser"
	"github.com/nathoo/spellcore/engine/resolve"
	"github.com/nathoo/spellcore/engine/spell"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Step runs one console command and returns its output together with
// every notification emitted while it ran.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	intent := parser.Parse(input)
	e.CommandLog = append(e.CommandLog, input)

	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	var out []string
	switch intent.Verb {
	case "cast":
		out = e.consoleCast(intent)
	case "tick", "wait":
		out = e.consoleTick(intent)
	case "cancel":
		out = e.consoleCancel(intent)
	case "move":
		out = e.consoleMove(intent)
	case "look":
		out = e.consoleLook()
	case "status":
		out = e.consoleStatus(intent)
	case "spells":
		out = e.consoleSpells()
	default:
		out = []string{fmt.Sprintf("I don't know how to %q.", intent.Verb)}
	}
	result.Output = append(result.Output, out...)

	result.Events = e.rec.Drain()
	for _, ev := range result.Events {
		result.Output = append(result.Output, events.Format(ev))
	}
	return result
}

func (e *Engine) consoleCast(intent types.Intent) []string {
	if intent.Object == "" {
		return []string{"Cast what?"}
	}
	res, err := resolve.Resolve(e.Map, e.Defs, intent, e.PlayerUnit())
	if err != nil {
		return []string{err.Error()}
	}
	if res.Actor == nil {
		return []string{"Nobody to cast as. Use \"as <unit> cast ...\"."}
	}

	snap := &targets.Snapshot{}
	if res.Target != nil {
		snap.SetUnit(res.Target)
	}
	if len(intent.Args) > 0 {
		pos, err := parsePosition(intent.Args, res.Actor.Pos.Z)
		if err != nil {
			return []string{err.Error()}
		}
		snap.SetDst(pos, e.Map.ID)
	}

	a, r := e.Cast(res.Actor, res.Spell.ID, snap, spell.Explicit())
	if r != types.CastOK {
		return []string{fmt.Sprintf("%s cannot cast %s: %s.", res.Actor.Name, res.Spell.Name, types.CastResultNames[r])}
	}
	switch {
	case a.IsFinished():
		return []string{fmt.Sprintf("%s casts %s.", res.Actor.Name, res.Spell.Name)}
	case a.State() == types.StateDelayed:
		return []string{fmt.Sprintf("%s launches %s.", res.Actor.Name, res.Spell.Name)}
	case a.State() == types.StateCasting:
		return []string{fmt.Sprintf("%s channels %s.", res.Actor.Name, res.Spell.Name)}
	}
	return []string{fmt.Sprintf("%s begins casting %s (%d ms).", res.Actor.Name, res.Spell.Name, a.CastTime())}
}

// parsePosition reads "x y [z]". A missing z defaults to z.
func parsePosition(args []string, z float64) (types.Position, error) {
	if len(args) < 2 || len(args) > 3 {
		return types.Position{}, fmt.Errorf("expected x y [z], got %d numbers", len(args))
	}
	var v [3]float64
	v[2] = z
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Position{}, fmt.Errorf("bad coordinate %q", s)
		}
		v[i] = f
	}
	return types.Position{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (e *Engine) consoleTick(intent types.Intent) []string {
	ms := e.Defs.World.TickMS
	if ms <= 0 {
		ms = 100
	}
	if intent.Verb == "tick" && len(intent.Args) > 0 {
		n, err := strconv.Atoi(intent.Args[0])
		if err != nil || n <= 0 {
			return []string{fmt.Sprintf("Bad duration %q.", intent.Args[0])}
		}
		ms = n
	}
	e.Tick(ms)
	return []string{fmt.Sprintf("Time passes. (t=%d ms)", e.Map.Now())}
}

func (e *Engine) consoleCancel(intent types.Intent) []string {
	res, err := resolve.Resolve(e.Map, e.Defs, types.Intent{Actor: intent.Actor}, e.PlayerUnit())
	if err != nil {
		return []string{err.Error()}
	}
	if res.Actor == nil {
		return []string{"Nobody to cancel for."}
	}

	if intent.Object != "" {
		slot, ok := types.SlotNames[intent.Object]
		if !ok {
			return []string{fmt.Sprintf("Unknown slot %q.", intent.Object)}
		}
		if !e.Cancel(res.Actor, slot) {
			return []string{fmt.Sprintf("%s is not casting anything there.", res.Actor.Name)}
		}
		return []string{fmt.Sprintf("%s stops casting.", res.Actor.Name)}
	}
	if e.CancelAll(res.Actor) == 0 {
		return []string{fmt.Sprintf("%s is not casting anything.", res.Actor.Name)}
	}
	return []string{fmt.Sprintf("%s stops casting.", res.Actor.Name)}
}

func (e *Engine) consoleMove(intent types.Intent) []string {
	if intent.Object == "" {
		return []string{"Move whom?"}
	}
	u, err := resolve.Unit(e.Map, intent.Object)
	if err != nil {
		return []string{err.Error()}
	}
	pos, err := parsePosition(intent.Args, u.Pos.Z)
	if err != nil {
		return []string{err.Error()}
	}
	pos.O = u.Pos.O
	u.Pos = pos
	return []string{fmt.Sprintf("%s moves to (%.1f, %.1f, %.1f).", u.Name, pos.X, pos.Y, pos.Z)}
}

func (e *Engine) consoleLook() []string {
	units := e.Map.Units()
	if len(units) == 0 {
		return []string{"Nobody is here."}
	}
	out := make([]string, 0, len(units))
	for _, u := range units {
		mark := " "
		if u.GUID == e.Player {
			mark = "*"
		}
		out = append(out, fmt.Sprintf("%s #%d %s (lvl %d) at (%.1f, %.1f, %.1f) hp %d/%d",
			mark, u.GUID, u.Name, u.Level, u.Pos.X, u.Pos.Y, u.Pos.Z, u.Health, u.MaxHealth))
	}
	return out
}

func (e *Engine) consoleStatus(intent types.Intent) []string {
	u := e.PlayerUnit()
	if intent.Object != "" {
		var err error
		if u, err = resolve.Unit(e.Map, intent.Object); err != nil {
			return []string{err.Error()}
		}
	}
	if u == nil {
		return []string{"Status of whom?"}
	}
	return e.describeUnit(u)
}

func (e *Engine) describeUnit(u *world.Unit) []string {
	out := []string{
		fmt.Sprintf("%s #%d, level %d, health %d/%d", u.Name, u.GUID, u.Level, u.Health, u.MaxHealth),
	}
	var powers []string
	for p := types.PowerType(0); p < types.MaxPowers; p++ {
		if u.MaxPower[p] > 0 {
			powers = append(powers, fmt.Sprintf("%s %d/%d", powerName(p), u.Power[p], u.MaxPower[p]))
		}
	}
	if len(powers) > 0 {
		out = append(out, "power: "+strings.Join(powers, ", "))
	}
	for _, a := range u.Auras {
		name := strconv.FormatUint(uint64(a.SpellID), 10)
		if s := e.Defs.Spell(a.SpellID); s != nil {
			name = s.Name
		}
		line := fmt.Sprintf("aura: %s", name)
		if a.DurationMS > 0 {
			line += fmt.Sprintf(" (%d ms left)", a.RemainingMS)
		}
		if a.Charges > 0 {
			line += fmt.Sprintf(" [%d charges]", a.Charges)
		}
		out = append(out, line)
	}
	for _, a := range e.Slots.Active(u.GUID) {
		out = append(out, fmt.Sprintf("casting: %s in %s slot, %s", a.Spell.Name, slotName(a.Slot()), a.State()))
	}
	return out
}

func (e *Engine) consoleSpells() []string {
	ids := make([]uint32, 0, len(e.Defs.Spells))
	for id := range e.Defs.Spells {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []string{"No spells are defined."}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		s := e.Defs.Spells[id]
		line := fmt.Sprintf("#%d %s", id, s.Name)
		if s.CastTimeMS > 0 {
			line += fmt.Sprintf(" (%d ms)", s.CastTimeMS)
		}
		out = append(out, line)
	}
	return out
}

func slotName(s types.SlotType) string {
	for name, v := range types.SlotNames {
		if v == s {
			return name
		}
	}
	return "unknown"
}

func powerName(p types.PowerType) string {
	for name, v := range types.PowerNames {
		if v == p {
			return name
		}
	}
	return strconv.Itoa(int(p))
}
