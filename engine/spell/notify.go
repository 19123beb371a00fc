package spell

import (
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/types"
)

func (a *Attempt) notify(typ string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["spell"] = a.Spell.ID
	data["caster"] = a.casterGUID
	data["cast_id"] = a.ID.String()
	a.env.emit(types.Event{Type: typ, Data: data})
}

// sendCastResult reports a failed precondition. Disabled creature spells
// and internal aborts stay silent.
func (a *Attempt) sendCastResult(r types.CastResult) {
	if r == types.CastOK || r == types.CastFailedDontReport {
		return
	}
	a.notify(events.CastFailed, map[string]any{
		"result": types.CastResultNames[r],
		"code":   int(r),
	})
}

func (a *Attempt) sendSpellStart() {
	a.notify(events.SpellStart, map[string]any{
		"cast_time": a.castTime,
		"target":    a.Targets.UnitGUID(),
	})
}

func (a *Attempt) sendSpellGo() {
	var hit, missed []types.GUID
	for _, t := range a.units {
		if t.Deleted {
			continue
		}
		if t.Miss == types.MissNone {
			hit = append(hit, t.GUID)
		} else {
			missed = append(missed, t.GUID)
		}
	}
	for _, g := range a.gos {
		if !g.Deleted {
			hit = append(hit, g.GUID)
		}
	}
	a.notify(events.SpellGo, map[string]any{
		"hits":   hit,
		"misses": missed,
	})
	for _, t := range a.units {
		if !t.Deleted && t.Miss != types.MissNone {
			a.sendSpellMiss(t.GUID, t.Miss)
		}
	}
}

func (a *Attempt) sendSpellMiss(target types.GUID, miss types.SpellMissInfo) {
	a.notify(events.SpellMiss, map[string]any{
		"target": target,
		"miss":   types.MissNames[miss],
	})
}

func (a *Attempt) sendInterrupted() {
	a.notify(events.Interrupted, nil)
}

func (a *Attempt) sendChannelStart(duration int) {
	a.notify(events.ChannelStart, map[string]any{"duration": duration})
}

func (a *Attempt) sendChannelUpdate(left int) {
	a.notify(events.ChannelUpdate, map[string]any{"remaining": left})
}

func (a *Attempt) sendLogExecute() {
	a.notify(events.LogExecute, map[string]any{"targets": len(a.units) + len(a.gos)})
}
