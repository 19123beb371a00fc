package spell

import (
	"math"

	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// minTravelDist is the shortest distance a missile is timed over.
const minTravelDist = 5.0

// travelDelay is the flight time of the spell's missile over dist.
func (a *Attempt) travelDelay(dist float64) int64 {
	if dist < minTravelDist {
		dist = minTravelDist
	}
	return int64(math.Floor(dist / a.Spell.Speed * 1000))
}

func (a *Attempt) fakeDelay() int64 {
	if a.env.Defs == nil {
		return 500
	}
	return int64(a.env.Defs.World.FakeDelayMS)
}

// targetDelay computes the arrival time of a new record and folds it
// into the delay moment.
func (a *Attempt) targetDelay(p types.Position) int64 {
	switch {
	case a.Spell.Speed > 0:
		d := a.travelDelay(a.caster.DistanceTo(p))
		if a.delayMoment == 0 || a.delayMoment > d {
			a.delayMoment = d
		}
		return d
	case a.has(types.AttrFakeDelay):
		a.delayMoment = a.fakeDelay()
		return a.delayMoment
	}
	return 0
}

func (a *Attempt) effectEmpty(eff int) bool {
	return eff < 0 || eff >= types.MaxEffectIndex || a.Spell.Effects[eff].Type == types.EffectNone
}

// addUnitTarget commits u for effect eff. A unit already recorded only
// gains the effect bit. Redirected units skip the target checks.
func (a *Attempt) addUnitTarget(u *world.Unit, eff int, redirected bool) {
	if u == nil || a.effectEmpty(eff) {
		return
	}
	if !redirected && !rules.CheckTarget(a.ruleContext(false), u, eff) {
		return
	}
	if t := a.UnitTarget(u.GUID); t != nil {
		t.EffectMask |= 1 << eff
		return
	}

	t := &UnitTarget{GUID: u.GUID, EffectMask: 1 << eff}
	if a.origCaster != nil {
		canMiss := a.triggeredByAura != nil || !a.triggered || a.isAutoShoot()
		t.Miss = a.env.Combat.HitResult(a.origCaster, u, a.Spell, canMiss)
		if a.forceHit && t.Miss != types.MissImmune {
			t.Miss = types.MissNone
		}
	} else {
		t.Miss = types.MissEvade
	}
	if t.Miss == types.MissNone {
		a.hits++
	} else {
		a.misses++
	}
	t.Delay = a.targetDelay(u.Pos)
	a.units = append(a.units, t)
}

// addGOTarget commits a game object for effect eff. Objects always hit
// and are not counted.
func (a *Attempt) addGOTarget(g *world.GameObject, eff int) {
	if g == nil || a.effectEmpty(eff) {
		return
	}
	for _, t := range a.gos {
		if !t.Deleted && t.GUID == g.GUID {
			t.EffectMask |= 1 << eff
			return
		}
	}
	a.gos = append(a.gos, &GOTarget{
		GUID:       g.GUID,
		EffectMask: 1 << eff,
		Delay:      a.targetDelay(g.Pos),
	})
}

func (a *Attempt) addItemTarget(it *world.Item, eff int) {
	if it == nil || a.effectEmpty(eff) {
		return
	}
	for _, t := range a.items {
		if t.GUID == it.GUID {
			t.EffectMask |= 1 << eff
			return
		}
	}
	a.items = append(a.items, &ItemTarget{GUID: it.GUID, EffectMask: 1 << eff})
}

// cleanupTargets soft-deletes every record before a new resolution.
func (a *Attempt) cleanupTargets() {
	for _, t := range a.units {
		t.Deleted = true
	}
	for _, t := range a.gos {
		t.Deleted = true
	}
	a.items = nil
	a.hits = 0
	a.misses = 0
	a.delayMoment = 0
}

// liveUnits counts the records still taking part in the cast.
func (a *Attempt) liveUnits() int {
	n := 0
	for _, t := range a.units {
		if !t.Deleted {
			n++
		}
	}
	return n
}

func (a *Attempt) hasRecords() bool {
	if a.liveUnits() > 0 || len(a.items) > 0 {
		return true
	}
	for _, t := range a.gos {
		if !t.Deleted {
			return true
		}
	}
	return false
}
