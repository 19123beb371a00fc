package rules

import (
	"math"

	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// arenaRecoveryLimitMS is the longest cooldown a spell may have and still
// be usable in an arena.
const arenaRecoveryLimitMS = 15 * 60 * 1000

func checkCooldown(c *Context) types.CastResult {
	if c.Triggered {
		return types.CastOK
	}
	owner := cooldownOwner(c)
	if owner == nil {
		return types.CastOK
	}
	cd := c.World.Cooldowns(owner)
	if c.CastItem != nil {
		if cd.HasItem(c.CastItem.Entry, c.Now) {
			return types.CastFailedNotReady
		}
		return types.CastOK
	}
	if cd.HasSpell(c.Spell.ID, c.Now) {
		return types.CastFailedNotReady
	}
	return types.CastOK
}

func checkDisabledWhileActive(c *Context) types.CastResult {
	if c.has(types.AttrDisabledWhileActive) && c.Caster.HasAura(c.Spell.ID) {
		return types.CastFailedNotReady
	}
	return types.CastOK
}

func checkGlobalCooldown(c *Context) types.CastResult {
	if c.Strict && !c.Triggered && HasGlobalCooldown(c) {
		return types.CastFailedNotReady
	}
	return types.CastOK
}

func checkLeavingBattleground(c *Context) types.CastResult {
	if !c.Triggered && c.Caster.IsPlayer() && c.Caster.HasFlag(types.UnitFlagWaitingToLeaveBG) {
		return types.CastFailedDontReport
	}
	return types.CastOK
}

func checkNotInCombat(c *Context) types.CastResult {
	if !c.Triggered && c.has(types.AttrNotInCombat) && c.Caster.HasFlag(types.UnitFlagInCombat) {
		return types.CastFailedAffectingCombat
	}
	return types.CastOK
}

// checkShapeshift compares the caster's form against the spell's stance
// masks. Form numbers start at 1; zero is no form.
func checkShapeshift(c *Context) types.CastResult {
	if !c.Strict || c.Triggered {
		return types.CastOK
	}
	var mask uint32
	if f := c.Caster.Form; f > 0 && f <= 32 {
		mask = 1 << (f - 1)
	}
	if c.Spell.StancesNot&mask != 0 {
		return types.CastFailedNotShapeshift
	}
	if c.Spell.Stances != 0 && c.Spell.Stances&mask == 0 {
		return types.CastFailedNotShapeshift
	}
	return types.CastOK
}

func checkOnlyStealthed(c *Context) types.CastResult {
	if !c.Strict || c.Triggered {
		return types.CastOK
	}
	if c.has(types.AttrOnlyStealthed) && !c.Caster.HasAuraType(types.AuraModStealth) {
		return types.CastFailedOnlyStealthed
	}
	return types.CastOK
}

func checkCasterAuraState(c *Context) types.CastResult {
	if st := c.Spell.CasterAuraState; st != 0 && !HasAuraState(c.Caster, st) {
		return types.CastFailedCasterAurastate
	}
	if st := c.Spell.CasterAuraStateNot; st != 0 && HasAuraState(c.Caster, st) {
		return types.CastFailedCasterAurastate
	}
	return types.CastOK
}

func checkMoving(c *Context) types.CastResult {
	if c.Caster.IsPlayer() && c.Caster.IsMoving() && state.IsAutoRepeat(c.Spell) {
		return types.CastFailedMoving
	}
	return types.CastOK
}

func checkOutdoors(c *Context) types.CastResult {
	if c.Triggered || !c.Caster.IsPlayer() || c.Caster.HasFlag(types.UnitFlagGameMaster) {
		return types.CastOK
	}
	if c.has(types.AttrOutdoorsOnly) && c.Caster.HasFlag(types.UnitFlagIndoors) {
		return types.CastFailedOnlyOutdoors
	}
	return types.CastOK
}

func checkRaidInstance(c *Context) types.CastResult {
	if c.has(types.AttrNotInRaidInstance) && c.Caster.HasFlag(types.UnitFlagInRaidInstance) {
		return types.CastFailedNotHere
	}
	return types.CastOK
}

// checkUnitTarget validates the explicit unit target.
func checkUnitTarget(c *Context) types.CastResult {
	target := c.Target
	if target == nil {
		return types.CastOK
	}
	s := c.Spell

	if st := s.TargetAuraStateNot; st != 0 && HasAuraState(target, st) {
		return types.CastFailedTargetAurastate
	}

	if target != c.Caster {
		if st := s.TargetAuraState; st != 0 && !HasAuraState(target, st) {
			return types.CastFailedTargetAurastate
		}
		if target.HasFlag(types.UnitFlagTaxiFlying) && c.Caster.IsPlayer() && !state.IsPositiveSpell(s) {
			return types.CastFailedBadTargets
		}
		if (!c.Triggered || c.autoShoot()) && !c.ignoresLOS() && c.Sight != nil &&
			!c.Sight.LineOfSight(c.Caster.Pos, target.Pos) {
			return types.CastFailedLineOfSight
		}
		if c.Caster.IsPlayer() && !c.passive() && c.CastItem == nil {
			for i := range s.Effects {
				if s.Effects[i].Type == types.EffectApplyAura && state.IsPositiveEffect(s, i) &&
					target.Level+10 < s.Level {
					return types.CastFailedLowlevel
				}
			}
		}
	}

	for i := range s.Effects {
		if s.Effects[i].TargetA != types.TargetCasterPet {
			continue
		}
		var pet *world.Unit
		if c.World != nil {
			pet = c.World.Pet(c.Caster)
		}
		if pet == nil {
			if c.TriggeredByAura {
				return types.CastFailedDontReport
			}
			return types.CastFailedNoPet
		}
		target = pet
		break
	}

	if target != c.Caster && !CheckTargetCreatureType(c, target) {
		if target.IsPlayer() {
			return types.CastFailedTargetIsPlayer
		}
		return types.CastFailedBadTargets
	}

	if s.Effects[0].TargetA == types.TargetScriptNearCaster && c.Defs != nil {
		if sts := c.Defs.ScriptTargetsFor(s.ID); len(sts) > 0 && !scriptTargetMatches(sts, target) {
			return types.CastFailedBadTargets
		}
	}

	if target != c.Caster && !c.Caster.IsPlayer() && c.Caster.CharmerOrOwner() != 0 {
		if state.IsPositiveSpell(s) {
			if c.Caster.IsHostileTo(target) && !state.HasEffect(s, types.EffectDispel) {
				return types.CastFailedBadTargets
			}
		} else if c.Caster.IsFriendlyTo(target) {
			return types.CastFailedBadTargets
		}
	}

	if c.has(types.AttrFromBehind) && !isBehind(c.Caster, target) {
		return types.CastFailedNotBehind
	}

	if target != c.Caster && c.has(types.AttrTargetNotInCombat) && target.HasFlag(types.UnitFlagInCombat) {
		return types.CastFailedTargetAffectingCombat
	}
	return types.CastOK
}

func scriptTargetMatches(sts []types.ScriptTarget, u *world.Unit) bool {
	for _, st := range sts {
		switch st.Type {
		case types.ScriptTargetGameObject:
			return true
		case types.ScriptTargetCreature:
			if u.IsAlive() && st.Entry == u.Entry {
				return true
			}
		case types.ScriptTargetDead:
			if !u.IsAlive() && st.Entry == u.Entry {
				return true
			}
		}
	}
	return false
}

// isBehind reports whether u stands in target's rear arc.
func isBehind(u, target *world.Unit) bool {
	return !world.HasInArc(target.Pos, math.Pi, u.Pos)
}

func (c *Context) ignoresLOS() bool {
	return c.has(types.AttrIgnoreLOS)
}

func checkPetLineOfSight(c *Context) types.CastResult {
	if c.Target != nil || c.Triggered || c.World == nil || c.Sight == nil {
		return types.CastOK
	}
	for i := range c.Spell.Effects {
		if c.Spell.Effects[i].TargetA != types.TargetCasterPet {
			continue
		}
		if pet := c.World.Pet(c.Caster); pet != nil && !c.ignoresLOS() &&
			!c.Sight.LineOfSight(c.Caster.Pos, pet.Pos) {
			return types.CastFailedLineOfSight
		}
		break
	}
	return types.CastOK
}

// checkDestLineOfSight covers ground-targeted casts with nothing else
// explicitly targeted.
func checkDestLineOfSight(c *Context) types.CastResult {
	if c.Target != nil || c.GO != nil || c.Item != nil || c.Targets == nil || c.Sight == nil {
		return types.CastOK
	}
	if c.Targets.Has(types.TargetFlagDest) && !c.ignoresLOS() && !c.Sight.LineOfSight(c.Caster.Pos, c.Targets.Dst) {
		return types.CastFailedLineOfSight
	}
	return types.CastOK
}

func checkComboPoints(c *Context) types.CastResult {
	if c.Triggered || !c.Caster.IsPlayer() || !c.has(types.AttrReqComboPoints) {
		return types.CastOK
	}
	if c.Caster.ComboPoints == 0 {
		return types.CastFailedNoComboPoints
	}
	return types.CastOK
}

func checkCastItemTargets(c *Context) types.CastResult {
	if c.CastItem == nil || c.Targets == nil {
		return types.CastOK
	}
	if selector.NeedsUnitTarget(c.Spell.Effects[0].TargetA) && c.Targets.IsEmpty() &&
		!c.Targets.Has(types.TargetFlagDest) {
		return types.CastFailedBadImplicitTargets
	}
	return types.CastOK
}

func checkBattlegroundOnly(c *Context) types.CastResult {
	if c.has(types.AttrBattlegroundOnly) && c.Caster.IsPlayer() &&
		!c.Caster.HasFlag(types.UnitFlagInBattleground) {
		return types.CastFailedOnlyBattlegrounds
	}
	return types.CastOK
}

func checkArena(c *Context) types.CastResult {
	if !c.Caster.HasFlag(types.UnitFlagInArena) {
		return types.CastOK
	}
	if c.has(types.AttrNotInArena) || c.Spell.RecoveryTimeMS > arenaRecoveryLimitMS {
		return types.CastFailedNotInArena
	}
	return types.CastOK
}

func checkArea(c *Context) types.CastResult {
	if c.Spell.AreaID != 0 && c.Caster.AreaID != c.Spell.AreaID {
		return types.CastFailedRequiresArea
	}
	return types.CastOK
}

func checkMounted(c *Context) types.CastResult {
	if !c.Caster.HasFlag(types.UnitFlagMounted) || !c.Caster.IsPlayer() || c.Triggered ||
		c.passive() || c.has(types.AttrCastableWhileMounted) {
		return types.CastOK
	}
	if c.Caster.HasFlag(types.UnitFlagTaxiFlying) {
		return types.CastFailedNotFlying
	}
	return types.CastFailedNotMounted
}

func checkItemsStep(c *Context) types.CastResult {
	if c.passive() || c.Triggered {
		return types.CastOK
	}
	return CheckItems(c)
}

// resourceChecksApply reports whether range, power and caster auras are
// validated for this cast. Triggered casts skip them unless quirked.
func resourceChecksApply(c *Context) bool {
	return !c.Triggered || HasQuirk(c.Spell.ID, QuirkCheckedWhenTriggered)
}

func checkRangeStep(c *Context) types.CastResult {
	if !resourceChecksApply(c) || state.IsNextMeleeSwing(c.Spell) {
		return types.CastOK
	}
	return CheckRange(c)
}

func checkPowerStep(c *Context) types.CastResult {
	if !resourceChecksApply(c) {
		return types.CastOK
	}
	return CheckPower(c)
}

func checkCasterAurasStep(c *Context) types.CastResult {
	if !resourceChecksApply(c) {
		return types.CastOK
	}
	return CheckCasterAuras(c)
}

// checkEffects runs the per-effect requirements.
func checkEffects(c *Context) types.CastResult {
	s := c.Spell
	for i := range s.Effects {
		e := s.Effects[i]
		switch e.Type {
		case types.EffectLearnSpell:
			if e.TargetA != types.TargetCasterPet {
				continue
			}
			if r := checkPetLearn(c, e); r != types.CastOK {
				return r
			}
		case types.EffectLearnPetSpell:
			if r := checkPetLearn(c, e); r != types.CastOK {
				return r
			}
		case types.EffectFeedPet:
			if !c.Caster.IsPlayer() || c.Item == nil {
				return types.CastFailedBadTargets
			}
			pet := c.pet()
			if pet == nil {
				return types.CastFailedNoPet
			}
			if c.Caster.HasFlag(types.UnitFlagInCombat) || pet.HasFlag(types.UnitFlagInCombat) {
				return types.CastFailedAffectingCombat
			}
		case types.EffectPowerDrain:
			p := types.PowerType(e.MiscValue)
			if c.Caster.IsPlayer() && c.Target != nil && c.Target != c.Caster &&
				(p < 0 || p >= types.MaxPowers || c.Target.MaxPower[p] == 0) {
				return types.CastFailedBadTargets
			}
		case types.EffectCharge:
			if c.Caster.HasAuraType(types.AuraModRoot) {
				return types.CastFailedRooted
			}
			if c.Target != nil && !c.Target.IsAlive() {
				return types.CastFailedBadTargets
			}
		case types.EffectOpenLock:
			if e.TargetA == types.TargetGameObject && c.GO == nil {
				return types.CastFailedBadTargets
			}
			if e.TargetA == types.TargetLocked && c.GO == nil && c.Item == nil {
				return types.CastFailedBadTargets
			}
		case types.EffectSummon:
			if c.Caster.Pet != 0 {
				return types.CastFailedAlreadyHaveSummon
			}
		case types.EffectSummonPlayer:
			if !c.Caster.IsPlayer() || c.Target == nil || !c.Target.IsPlayer() || c.Target == c.Caster {
				return types.CastFailedBadTargets
			}
		case types.EffectEnergize:
			if p := types.PowerType(e.MiscValue); p < 0 || p >= types.MaxPowers {
				return types.CastFailedUnknown
			}
		}
	}
	return types.CastOK
}

func (c *Context) pet() *world.Unit {
	if c.World == nil {
		return nil
	}
	return c.World.Pet(c.Caster)
}

func checkPetLearn(c *Context, e types.EffectDef) types.CastResult {
	pet := c.pet()
	if pet == nil {
		return types.CastFailedNoPet
	}
	if c.Defs != nil && c.Defs.Spell(e.TriggerSpell) == nil {
		return types.CastFailedNotKnown
	}
	if c.Spell.Level > pet.Level {
		return types.CastFailedLowlevel
	}
	return types.CastOK
}
