package engine

import (
	"math"

	"github.com/nathoo/spellcore/engine/spell"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Default crit chances in percent.
const (
	DefaultSpellCrit = 5.0
	DefaultMeleeCrit = 5.0
)

// HitTable is the built-in combat table: level based miss chances, a
// single roll for melee avoidance, reflect auras and pushback resistance.
// All rolls go through the engine RNG.
type HitTable struct {
	rng *RNG

	SpellCrit float64
	MeleeCrit float64
}

// NewHitTable returns a table rolling on rng.
func NewHitTable(rng *RNG) *HitTable {
	return &HitTable{rng: rng, SpellCrit: DefaultSpellCrit, MeleeCrit: DefaultMeleeCrit}
}

var _ spell.Combat = (*HitTable)(nil)

// HitResult rolls the outcome of caster's spell against target.
func (h *HitTable) HitResult(caster, target *world.Unit, s *types.SpellDef, canMiss bool) types.SpellMissInfo {
	if caster == nil || target == nil {
		return types.MissEvade
	}
	if !canMiss {
		return types.MissNone
	}
	positive := state.IsPositiveSpell(s)
	if positive && !caster.IsHostileTo(target) {
		return types.MissNone
	}
	if !positive && !state.HasAttr(s, types.AttrUnaffectedByInvulnerability) && target.IsImmuneToSchool(s.School) {
		return types.MissImmune
	}

	diff := target.Level - caster.Level
	switch s.DmgClass {
	case types.DamageClassMagic:
		return h.magicHit(diff, target.IsPlayer())
	case types.DamageClassMelee, types.DamageClassRanged:
		return h.meleeHit(caster, target, s, diff)
	}
	return types.MissNone
}

// magicHit resolves a spell roll. Casters miss 4% of the time against an
// even target, plus one point per level up to +2 and then 11 points per
// level (7 against players). Every magic miss is a resist.
func (h *HitTable) magicHit(diff int, player bool) types.SpellMissInfo {
	miss := 4 + diff
	if diff > 2 {
		step := 11
		if player {
			step = 7
		}
		miss = 6 + (diff-2)*step
	}
	miss = clamp(miss, 1, 99)
	if h.rng.Roll(100) <= miss {
		return types.MissResist
	}
	return types.MissNone
}

// meleeHit walks the avoidance table with one roll in hundredths of a
// percent: miss, dodge, then parry when the attacker is in front.
func (h *HitTable) meleeHit(caster, target *world.Unit, s *types.SpellDef, diff int) types.SpellMissInfo {
	half := diff * 50
	miss := clamp(500+half, 0, 6000)
	dodge, parry := 0, 0
	if s.DmgClass == types.DamageClassMelee {
		dodge = clamp(500+half, 0, 10000)
		if world.HasInArc(target.Pos, math.Pi, caster.Pos) && !target.IsCrowdControlled() {
			parry = clamp(500+half, 0, 10000)
		}
	}

	roll := h.rng.Intn(10000)
	if roll < miss {
		return types.MissMiss
	}
	roll -= miss
	if roll < dodge {
		return types.MissDodge
	}
	roll -= dodge
	if roll < parry {
		return types.MissParry
	}
	return types.MissNone
}

// ReflectResult rolls the target's reflect auras against a magic spell.
// A reflect consumes one charge of the aura that caused it.
func (h *HitTable) ReflectResult(caster, target *world.Unit, s *types.SpellDef) types.SpellMissInfo {
	if caster == target || s.DmgClass != types.DamageClassMagic {
		return types.MissNone
	}
	for _, a := range target.AurasOfType(types.AuraReflectSpells) {
		if a.Amount <= 0 || h.rng.Roll(100) > a.Amount {
			continue
		}
		if a.Charges > 0 {
			a.Charges--
			if a.Charges == 0 {
				target.RemoveAuraInstance(a)
			}
		}
		return types.MissReflect
	}
	return types.MissNone
}

// CritChance returns the crit percent for a spell of caster.
func (h *HitTable) CritChance(caster *world.Unit, s *types.SpellDef) float64 {
	switch s.DmgClass {
	case types.DamageClassMagic:
		return h.SpellCrit
	case types.DamageClassMelee, types.DamageClassRanged:
		return h.MeleeCrit
	}
	return 0
}

// ResistPushback rolls the caster's flat resistance plus any resist
// pushback auras.
func (h *HitTable) ResistPushback(caster *world.Unit) bool {
	chance := caster.ResistPushback
	for _, a := range caster.AurasOfType(types.AuraResistPushback) {
		chance += a.Amount
	}
	if chance <= 0 {
		return false
	}
	if chance >= 100 {
		return true
	}
	return h.rng.Roll(100) <= chance
}

// MechanicResistChance sums the percent modifier auras tagged with m.
func (h *HitTable) MechanicResistChance(target *world.Unit, m types.Mechanic) int {
	if m == types.MechanicNone {
		return 0
	}
	chance := 0
	for _, a := range target.AurasOfType(types.AuraAddPctModifier) {
		if a.Mechanic == m {
			chance += a.Amount
		}
	}
	return clamp(chance, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
