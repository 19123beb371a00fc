package rules

import (
	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// warlockFamily is the class family whose demon-control spells may not
// target players.
const warlockFamily = 5

const demonControlFlags uint64 = 0x0200000000

// CheckTarget decides whether one candidate unit may be affected by
// effect eff of the spell. It is applied to every unit an implicit
// selector yields.
func CheckTarget(c *Context, target *world.Unit, eff int) bool {
	s := c.Spell
	e := s.Effects[eff]
	caster := c.Caster

	if target.InSanctuary() && isPlayerControlled(target) &&
		!state.IsPositiveEffect(s, 0) && !HasQuirk(s.ID, QuirkSanctuaryAllowed) {
		return false
	}

	if e.Type == types.EffectApplyAura &&
		(e.TargetA == types.TargetFriendAndParty || e.TargetA == types.TargetRaidAndClass) &&
		target.Level < s.Level {
		return false
	}

	if e.TargetA != types.TargetUnitCaster && !CheckTargetCreatureType(c, target) {
		return false
	}

	if HasQuirk(s.ID, QuirkMaxLevel64) && target.Level >= 64 {
		return false
	}

	if c.has(types.AttrPlayersOnly) && !target.IsPlayer() && e.TargetA != types.TargetUnitCaster {
		return false
	}

	if target == caster && c.has(types.AttrCantTargetSelf) &&
		!(e.TargetA == types.TargetUnitCaster && e.TargetB == types.TargetNone) {
		return false
	}

	if target != caster && target.HasFlag(types.UnitFlagSpawning) &&
		target.CharmerOrOwner() != caster.GUID && !HasQuirk(s.ID, QuirkIgnoreNotAttackable) {
		return false
	}

	if target.IsPlayer() && target.HasFlag(types.UnitFlagGameMaster) && !state.IsPositiveSpell(s) {
		return false
	}

	if c.Triggered {
		return true
	}
	return checkTargetSight(c, target, e)
}

func checkTargetSight(c *Context, target *world.Unit, e types.EffectDef) bool {
	caster := c.Caster
	switch e.Type {
	case types.EffectFriendSummon, types.EffectSummonPlayer:
		return true
	case types.EffectDummy:
		if !HasQuirk(c.Spell.ID, QuirkCorpseLineOfSight) {
			break
		}
		return corpseSight(c, target)
	case types.EffectResurrect, types.EffectResurrectNew:
		return corpseSight(c, target)
	}

	if target == caster || c.has(types.AttrIgnoreLOS) || c.Sight == nil {
		return true
	}
	if entry, ok := selector.Lookup(e.TargetA); ok && entry.Category == selector.CategoryAreaDst &&
		c.Targets != nil && c.Targets.Has(types.TargetFlagDest) {
		dst := c.Targets.Dst
		return c.Sight.LineOfSight(target.Pos, dst) && c.Sight.LineOfSight(caster.Pos, dst)
	}
	return c.Sight.LineOfSight(caster.Pos, target.Pos)
}

// corpseSight lets a dead target be reached through its explicit corpse
// when the body itself is out of sight.
func corpseSight(c *Context, target *world.Unit) bool {
	if c.Sight == nil || c.Sight.LineOfSight(c.Caster.Pos, target.Pos) {
		return true
	}
	if c.Targets == nil {
		return false
	}
	corpse := c.Targets.Corpse()
	if corpse == nil || corpse.Owner != target.GUID {
		return false
	}
	return c.Sight.LineOfSight(c.Caster.Pos, corpse.Pos)
}

// CheckTargetCreatureType tests the spell's creature type mask against
// the target. Creature types are numbered from 1; zero matches any mask.
func CheckTargetCreatureType(c *Context, target *world.Unit) bool {
	s := c.Spell
	mask := s.TargetCreatureType

	if s.Family == warlockFamily && s.FamilyFlags&demonControlFlags != 0 {
		if target.IsPlayer() || isPlayerControlled(target) {
			return false
		}
		mask = 0x7FF
	}
	if HasQuirk(s.ID, QuirkIgnoreCreatureType) {
		mask = 0
	}

	var typeMask uint32
	if ct := target.CreatureType; ct > 0 && ct <= 32 {
		typeMask = 1 << (ct - 1)
	}
	return typeMask == 0 || mask == 0 || mask&typeMask != 0
}

func isPlayerControlled(u *world.Unit) bool {
	return u.IsPlayer() || u.IsPet() && u.CharmerOrOwner() != 0
}
