package rules

import (
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// PetGCDCategory is the global cooldown category shared by every spell a
// non-player caster uses.
const PetGCDCategory uint32 = 133

// Phase places a per-spell override in the validation order.
type Phase uint8

const (
	// PhaseEarly runs right after the cooldown checks.
	PhaseEarly Phase = iota
	// PhaseTarget runs once the explicit target has been validated.
	PhaseTarget
	// PhaseEffect runs after the per-effect requirements.
	PhaseEffect
)

// Override is a spell-specific requirement layered on the generic checks.
type Override struct {
	Phase Phase
	Check func(*Context) types.CastResult
}

// Overrides are keyed by spell ID.
var Overrides = map[uint32][]Override{
	// Bouncing spells refuse a target that still carries the bounce marker.
	34477: {{PhaseEarly, func(c *Context) types.CastResult {
		if c.Target != nil && c.Target.HasAura(35097) {
			return types.CastFailedAuraBounced
		}
		return types.CastOK
	}}},
	3411: {{PhaseTarget, func(c *Context) types.CastResult {
		if c.Target != nil && !c.Target.IsAlive() {
			return types.CastFailedBadTargets
		}
		return types.CastOK
	}}},
	// Only castable on warriors and rogues.
	10060: {{PhaseTarget, func(c *Context) types.CastResult {
		if c.Target == nil || !classIn(c.Target, 0x9) {
			return types.CastFailedBadTargets
		}
		return types.CastOK
	}}},
	19938: {{PhaseTarget, func(c *Context) types.CastResult {
		if c.Target == nil || !c.Target.HasAura(17743) {
			return types.CastFailedBadTargets
		}
		return types.CastOK
	}}},
	51582: {{PhaseEffect, func(c *Context) types.CastResult {
		if c.Caster.HasFlag(types.UnitFlagInWater) {
			return types.CastFailedOnlyAbovewater
		}
		return types.CastOK
	}}},
	// Execute-style finisher below 20% health.
	16053: {{PhaseEffect, func(c *Context) types.CastResult {
		if c.Target == nil || c.Target.Health*5 > c.Target.MaxHealth {
			return types.CastFailedBadTargets
		}
		return types.CastOK
	}}},
}

func classIn(u *world.Unit, mask uint32) bool {
	if u.Class <= 0 || u.Class > 32 {
		return false
	}
	return mask&(1<<(u.Class-1)) != 0
}

func overridePhase(p Phase) func(*Context) types.CastResult {
	return func(c *Context) types.CastResult {
		for _, o := range Overrides[c.Spell.ID] {
			if o.Phase != p {
				continue
			}
			if r := o.Check(c); r != types.CastOK {
				return r
			}
		}
		return types.CastOK
	}
}

// Quirk is a behavior exception a handful of spell IDs carry.
type Quirk uint8

const (
	QuirkIgnoreCasterAuras Quirk = 1 << iota
	QuirkIgnoreCreatureType
	QuirkCheckedWhenTriggered
	QuirkSanctuaryAllowed
	QuirkMaxLevel64
	QuirkIgnoreNotAttackable
	QuirkCorpseLineOfSight
)

var quirks = map[uint32]Quirk{
	23336: QuirkIgnoreCasterAuras,
	23334: QuirkIgnoreCasterAuras,
	34991: QuirkIgnoreCasterAuras,

	2641:  QuirkIgnoreCreatureType,
	23356: QuirkIgnoreCreatureType,
	30009: QuirkIgnoreCreatureType,

	33395: QuirkCheckedWhenTriggered,

	8326:  QuirkSanctuaryAllowed,
	20584: QuirkSanctuaryAllowed,

	15366: QuirkMaxLevel64,
	18222: QuirkMaxLevel64,
	22820: QuirkMaxLevel64,
	22888: QuirkMaxLevel64,
	29534: QuirkMaxLevel64,

	14813: QuirkIgnoreNotAttackable,
	32958: QuirkIgnoreNotAttackable,
	44877: QuirkIgnoreNotAttackable,
	45023: QuirkIgnoreNotAttackable,
	38482: QuirkIgnoreNotAttackable,

	20577: QuirkCorpseLineOfSight,
}

// HasQuirk reports whether spell id carries q.
func HasQuirk(id uint32, q Quirk) bool {
	return quirks[id]&q != 0
}
