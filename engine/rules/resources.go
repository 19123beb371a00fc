package rules

import (
	"math"

	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

const (
	meleeRange = 5.0
	// rangeLeeway is added to every limit on non-strict checks so a cast
	// started at the edge is not lost to small movements.
	rangeLeeway = 4.0
)

// meleeReach is the effective melee distance between two units.
func meleeReach(a, b *world.Unit) float64 {
	return math.Max(meleeRange, a.CombatReach+b.CombatReach+4.0/3.0)
}

// CheckRange validates distance and facing against the explicit targets.
func CheckRange(c *Context) types.CastResult {
	s := c.Spell
	if s.Range.Max == 0 {
		return types.CastOK
	}
	maxR, minR := s.Range.Max, s.Range.Min
	if !c.Strict {
		maxR += rangeLeeway
	}

	if t := c.Target; t != nil && t != c.Caster {
		dist := c.Caster.Distance(t)
		switch s.Range.Type {
		case types.RangeMelee:
			reach := meleeReach(c.Caster, t)
			if !c.Strict {
				reach += rangeLeeway
			}
			if dist > reach {
				return types.CastFailedOutOfRange
			}
		case types.RangeRanged:
			if dist < meleeReach(c.Caster, t) {
				return types.CastFailedTooClose
			}
		}
		if dist > maxR {
			return types.CastFailedOutOfRange
		}
		if minR > 0 && dist < minR {
			return types.CastFailedTooClose
		}
		if c.has(types.AttrFacingFront) && c.Caster.CharmerOrOwner() == 0 &&
			!world.HasInArc(c.Caster.Pos, math.Pi, t.Pos) {
			return types.CastFailedUnitNotInfront
		}
	}

	if g := c.GO; g != nil {
		dist := c.Caster.DistanceTo(g.Pos)
		switch g.Type {
		case types.GOTypeTrap:
			if dist > maxR {
				return types.CastFailedOutOfRange
			}
			if minR > 0 && dist < minR {
				return types.CastFailedTooClose
			}
			if c.Caster.IsPlayer() && !world.HasInArc(c.Caster.Pos, math.Pi, g.Pos) {
				return types.CastFailedNotInfront
			}
		case types.GOTypeChest, types.GOTypeGoober, types.GOTypeButton:
			if dist > maxR {
				return types.CastFailedOutOfRange
			}
		}
	}

	if ts := c.Targets; ts != nil && ts.Mask == types.TargetFlagDest {
		if d := ts.Dst; d.X != 0 || d.Y != 0 || d.Z != 0 {
			dist := c.Caster.DistanceTo(d)
			if dist > maxR {
				return types.CastFailedOutOfRange
			}
			if minR > 0 && dist < minR {
				return types.CastFailedTooClose
			}
		}
	}
	return types.CastOK
}

// CheckPower validates the computed power cost against the caster's pool.
func CheckPower(c *Context) types.CastResult {
	if c.HasCastItem {
		return types.CastOK
	}
	p := c.Spell.PowerType
	if p == types.PowerHealth {
		if c.Caster.Health <= c.PowerCost {
			return types.CastFailedCasterAurastate
		}
		return types.CastOK
	}
	if p < 0 || p >= types.MaxPowers {
		return types.CastFailedUnknown
	}
	if c.Caster.Power[p] < c.PowerCost {
		return types.CastFailedNoPower
	}
	return types.CastOK
}

// CheckCasterAuras rejects casts blocked by control effects on the
// caster. Spells that grant immunity may be cast through the auras they
// would remove.
func CheckCasterAuras(c *Context) types.CastResult {
	s := c.Spell
	if HasQuirk(s.ID, QuirkIgnoreCasterAuras) {
		return types.CastOK
	}

	var schoolImmune uint32
	var mechanicImmune uint64
	if c.has(types.AttrIgnoreCasterAuras) {
		for i := range s.Effects {
			e := s.Effects[i]
			if e.Type != types.EffectApplyAura {
				continue
			}
			switch e.Aura {
			case types.AuraSchoolImmunity:
				schoolImmune |= uint32(e.MiscValue)
			case types.AuraMechanicImmunity:
				mechanicImmune |= 1 << uint(e.MiscValue)
			}
		}
	}
	immunity := schoolImmune != 0 || mechanicImmune != 0

	var prevented types.CastResult
	u := c.Caster
	switch {
	case u.HasAuraType(types.AuraModStun) && !c.has(types.AttrUsableWhileStunned):
		prevented = types.CastFailedStunned
	case u.HasAuraType(types.AuraModConfuse):
		prevented = types.CastFailedConfused
	case u.HasAuraType(types.AuraModFear):
		prevented = types.CastFailedFleeing
	case u.HasAuraType(types.AuraModSilence) && s.PreventionType == types.PreventionSilence:
		prevented = types.CastFailedSilenced
	case u.HasAuraType(types.AuraModPacify) && s.PreventionType == types.PreventionPacify:
		prevented = types.CastFailedPacified
	}
	if prevented == types.CastOK {
		return types.CastOK
	}
	if !immunity {
		return prevented
	}

	// Every remaining blocker must be one the spell makes the caster
	// immune to.
	for _, a := range u.Auras {
		if a.Positive {
			continue
		}
		if a.Mechanic != types.MechanicNone && mechanicImmune&(1<<uint(a.Mechanic)) != 0 {
			continue
		}
		if def := c.auraSpell(a); def != nil && schoolImmune&(1<<uint(def.School)) != 0 {
			continue
		}
		switch a.Type {
		case types.AuraModStun:
			if !c.has(types.AttrUsableWhileStunned) {
				return types.CastFailedStunned
			}
		case types.AuraModConfuse:
			return types.CastFailedConfused
		case types.AuraModFear:
			return types.CastFailedFleeing
		case types.AuraModSilence:
			if s.PreventionType == types.PreventionSilence {
				return types.CastFailedSilenced
			}
		case types.AuraModPacify:
			if s.PreventionType == types.PreventionPacify {
				return types.CastFailedPacified
			}
		}
	}
	return types.CastOK
}

func (c *Context) auraSpell(a *world.Aura) *types.SpellDef {
	if c.Defs == nil {
		return nil
	}
	return c.Defs.Spell(a.SpellID)
}

// CheckItems validates the cast item, item targets, spell focus and
// reagents. Only players carry items.
func CheckItems(c *Context) types.CastResult {
	u := c.Caster
	if !u.IsPlayer() {
		return types.CastOK
	}
	s := c.Spell

	if c.HasCastItem {
		it := c.CastItem
		if it == nil {
			return types.CastFailedItemNotReady
		}
		if c.World != nil && !c.World.HasItemCount(u, it.Entry, 1) {
			return types.CastFailedItemNotReady
		}
		if it.MaxCharges > 0 && it.Charges == 0 {
			return types.CastFailedNoChargesRemain
		}
		if it.Class == types.ItemClassConsumable && c.Target != nil {
			if r := checkConsumableTarget(c); r != types.CastOK {
				return r
			}
		}
	}

	if c.Targets != nil && c.Targets.Has(types.TargetFlagItem|types.TargetFlagTradeItem) {
		if c.Item == nil {
			return types.CastFailedItemGone
		}
	}

	if focus := s.RequiresSpellFocus; focus != 0 {
		if !c.hasSpellFocus(focus) {
			return types.CastFailedRequiresSpellFocus
		}
	}

	if !c.Triggered {
		for _, r := range s.Reagents {
			if r.Item == 0 || r.Count <= 0 {
				continue
			}
			need := r.Count
			// A charged cast item that is also the reagent and is about to
			// run out must survive until the reagent is taken.
			if it := c.CastItem; it != nil && it.Entry == r.Item && it.Expendable && it.Charges < 2 {
				need++
			}
			if c.World == nil || !c.World.HasItemCount(u, r.Item, need) {
				return types.CastFailedItemNotReady
			}
		}
	}
	return types.CastOK
}

func checkConsumableTarget(c *Context) types.CastResult {
	s := c.Spell
	t := c.Target
	for i := range s.Effects {
		e := s.Effects[i]
		if e.TargetA == types.TargetCasterPet {
			continue
		}
		switch e.Type {
		case types.EffectHeal:
			if t.Health >= t.MaxHealth {
				return types.CastFailedAlreadyAtFullHealth
			}
		case types.EffectEnergize:
			p := types.PowerType(e.MiscValue)
			if p < 0 || p >= types.MaxPowers {
				return types.CastFailedUnknown
			}
			if t.Power[p] >= t.MaxPower[p] {
				return types.CastFailedAlreadyAtFullPower
			}
		}
	}
	return types.CastOK
}

func (c *Context) hasSpellFocus(focus uint32) bool {
	if c.World == nil {
		return false
	}
	radius := 100.0
	if c.Defs != nil {
		radius = c.Defs.World.MaxVisibility
	}
	gos := c.World.GameObjectsInRange(c.Caster.Pos, radius, func(g *world.GameObject) bool {
		return g.Type == types.GOTypeSpellFocus && g.FocusID == focus
	})
	return len(gos) > 0
}

// PowerCost is the flat plus percentage cost of casting s.
func PowerCost(s *types.SpellDef, caster *world.Unit) int {
	cost := s.PowerCost
	if s.PowerCostPct > 0 {
		switch {
		case s.PowerType == types.PowerHealth:
			cost += s.PowerCostPct * caster.MaxHealth / 100
		case s.PowerType >= 0 && s.PowerType < types.MaxPowers:
			cost += s.PowerCostPct * caster.MaxPower[s.PowerType] / 100
		}
	}
	return cost
}
