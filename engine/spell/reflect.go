package spell

import (
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// checkForReflects rolls a reflect for every hit record. A reflected
// record becomes a miss and its own roll decides whether the spell comes
// back to hit the caster. Reflected missiles fly half again as long.
func (a *Attempt) checkForReflects() {
	if state.IsPositiveSpell(a.Spell) {
		return
	}
	for _, t := range a.units {
		if t.Deleted || t.Miss != types.MissNone {
			continue
		}
		u := a.resolveUnit(t.GUID)
		if u == nil {
			continue
		}
		t.Miss = a.env.Combat.ReflectResult(a.caster, u, a.Spell)
		if t.Miss == types.MissNone {
			continue
		}
		a.hits--
		a.misses++
		t.Reflect = a.env.Combat.HitResult(a.caster, a.caster, a.Spell, true)
		if t.Reflect == types.MissReflect {
			t.Reflect = types.MissParry
		}
		t.Delay += t.Delay >> 1
	}
}
