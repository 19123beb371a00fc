package spell

import (
	"math"

	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Spell IDs with hard-wired behavior.
const (
	spellCannibalize       uint32 = 20577
	spellChannelFromCaster uint32 = 38700
	spellNoDestEffects     uint32 = 43622
	spellGroundEffect      uint32 = 42339
)

// Friendly spells that may be cast on a player target without the
// friendly-fire evade.
var friendlyFireAllowed = map[uint32]bool{
	45034: true,
	30531: true,
}

const (
	felguardEntry        uint32 = 17252
	sinisterEntry        uint32 = 25708
	fishingLOSExemptArea uint32 = 3607
)

// Mage channels that break once the target leaves range.
const (
	mageFamily             uint32  = 3
	channelRangeExitFlags  uint64  = 0x800
	channelRangeExitMargin float64 = 5.0
)

// channelBreaksOutOfRange reports channels interrupted when their target
// walks out of range.
func (a *Attempt) channelBreaksOutOfRange() bool {
	return a.Spell.Family == mageFamily && a.Spell.FamilyFlags&channelRangeExitFlags != 0
}

func hasAnyAura(u *world.Unit, ids ...uint32) bool {
	for _, id := range ids {
		if u.HasAura(id) {
			return true
		}
	}
	return false
}

// areaFilters trims an area collection for the spells listed.
var areaFilters = map[uint32]func(a *Attempt, units []*world.Unit) []*world.Unit{
	37433: func(a *Attempt, units []*world.Unit) []*world.Unit {
		return removeUnits(units, func(u *world.Unit) bool { return !u.IsPlayer() || u.HasFlag(types.UnitFlagInWater) })
	},
	40869: withoutAuras(43690),
	43657: withoutAuras(44007, 43648),
	28062: withoutAuras(28059, 39088),
	39090: withoutAuras(28059, 39088),
	28085: withoutAuras(28084, 39091),
	39093: withoutAuras(28084, 39091),
	44869: func(a *Attempt, units []*world.Unit) []*world.Unit {
		victim := a.caster.Victim
		units = removeUnits(units, func(u *world.Unit) bool { return u.HasAura(44867) || u.GUID == victim })
		return withoutAuras(45032, 45034)(a, units)
	},
	45032: withoutAuras(45032, 45034),
	45034: withoutAuras(45032, 45034),
	41376: withoutVictim,
	46771: withoutVictim,
	45248: func(a *Attempt, units []*world.Unit) []*world.Unit {
		z := a.caster.Pos.Z
		return removeUnits(units, func(u *world.Unit) bool { return math.Abs(z-u.Pos.Z) > 5 })
	},
	45785: func(a *Attempt, units []*world.Unit) []*world.Unit {
		return removeUnits(units, func(u *world.Unit) bool { return u.Entry != sinisterEntry })
	},
	30915: growingCloud,
	38463: growingCloud,
}

func withoutAuras(ids ...uint32) func(*Attempt, []*world.Unit) []*world.Unit {
	return func(_ *Attempt, units []*world.Unit) []*world.Unit {
		return removeUnits(units, func(u *world.Unit) bool { return hasAnyAura(u, ids...) })
	}
}

func withoutVictim(a *Attempt, units []*world.Unit) []*world.Unit {
	victim := a.caster.Victim
	return removeUnits(units, func(u *world.Unit) bool { return u.GUID == victim })
}

// growingCloud widens with the age of the aura that triggers it: the
// radius is 15 yards minus one per 5 s of remaining duration.
func growingCloud(a *Attempt, units []*world.Unit) []*world.Unit {
	if a.triggeredByAura == nil {
		return units
	}
	var src *world.Aura
	for _, au := range a.caster.Auras {
		if au.SpellID == a.triggeredByAura.SpellID && au.EffIndex == 0 {
			src = au
			break
		}
	}
	if src == nil {
		return units
	}
	radius := float64(15 - src.RemainingMS/5000)
	return removeUnits(units, func(u *world.Unit) bool { return a.caster.Distance(u) > radius })
}

// filterArea applies the spell's area filter, if any.
func (a *Attempt) filterArea(units []*world.Unit) []*world.Unit {
	if f, ok := areaFilters[a.Spell.ID]; ok {
		return f(a, units)
	}
	return units
}
