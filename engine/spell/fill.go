package spell

import (
	"math"

	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// ResolveTargets turns the snapshot into target records, replacing any
// previous resolution. It may finish the attempt when a selector aborts
// the cast.
func (a *Attempt) ResolveTargets() {
	a.cleanupTargets()
	s := a.Spell

	for i := 0; i < types.MaxEffectIndex; i++ {
		e := s.Effects[i]
		if e.Type == types.EffectNone {
			continue
		}
		req := selector.RequirementOf(e.Type)
		if req == selector.RequireNone {
			continue
		}

		if e.TargetA != types.TargetNone {
			a.setTargetMap(i, e.TargetA)
		}
		if e.TargetB != types.TargetNone {
			a.setTargetMap(i, e.TargetB)
		}
		if a.IsFinished() {
			return
		}

		switch req {
		case selector.RequireCaster:
			a.addUnitTarget(a.caster, i, false)
			continue
		case selector.RequireItem:
			a.addItemTarget(a.Targets.Item(), i)
			continue
		case selector.RequireDest:
			continue
		}

		if e.TargetA == types.TargetNone && e.TargetB == types.TargetNone {
			a.defaultTargets(i)
			if a.IsFinished() {
				return
			}
		}

		if state.IsChanneled(s) {
			bit := uint8(1) << i
			for _, t := range a.units {
				if !t.Deleted && t.EffectMask&bit != 0 {
					a.needAlive |= bit
					break
				}
			}
		}
	}

	if a.Targets.Has(types.TargetFlagDest) {
		if s.Speed > 0 {
			a.delayMoment = a.travelDelay(world.Dist3D(a.caster.Pos, a.Targets.Dst))
		} else if a.has(types.AttrFakeDelay) {
			a.delayMoment = a.fakeDelay()
		}
	}
}

// defaultTargets picks targets for a unit effect that names no selector.
func (a *Attempt) defaultTargets(eff int) {
	e := a.Spell.Effects[eff]
	unit := a.Targets.Unit()

	switch e.Type {
	case types.EffectDummy:
		if a.Spell.ID == spellCannibalize {
			a.cannibalizeTarget(eff)
			return
		}
		a.addUnitTarget(unit, eff, false)

	case types.EffectCreateItem, types.EffectTriggerSpell, types.EffectSkillStep,
		types.EffectSelfResurrect, types.EffectReputation, types.EffectLearnSpell:
		if unit != nil {
			a.addUnitTarget(unit, eff, false)
		} else {
			a.addUnitTarget(a.caster, eff, false)
		}

	case types.EffectSendTaxi, types.EffectSummonPlayer:
		a.addUnitTarget(unit, eff, false)

	case types.EffectResurrect, types.EffectResurrectNew:
		a.addUnitTarget(unit, eff, false)
		a.addUnitTarget(a.corpseOwner(), eff, false)

	case types.EffectSummonChangeItem, types.EffectAddFarsight, types.EffectStuck,
		types.EffectDestroyAllTotems, types.EffectFriendSummon:
		a.addUnitTarget(a.caster, eff, false)

	case types.EffectLearnPetSpell:
		if pet := a.env.Dir.Unit(a.caster.Pet); pet != nil {
			a.addUnitTarget(pet, eff, false)
		}

	case types.EffectApplyAura:
		if e.Aura == types.AuraAddFlatModifier || e.Aura == types.AuraAddPctModifier {
			a.addUnitTarget(a.caster, eff, false)
		}

	case types.EffectApplyAreaAuraParty:
		if w := a.Spell.LegacyAttributes; w == types.LegacyAttrPartyAuraPersist || w == types.LegacyAttrPartyAuraPet {
			a.setTargetMap(eff, types.TargetFriendAndParty)
		}

	case types.EffectSkinPlayerCorpse:
		if unit != nil {
			a.addUnitTarget(unit, eff, false)
		} else {
			a.addUnitTarget(a.corpseOwner(), eff, false)
		}
	}
}

// corpseOwner resolves the player owning the snapshot corpse.
func (a *Attempt) corpseOwner() *world.Unit {
	c := a.Targets.Corpse()
	if c == nil {
		return nil
	}
	return a.env.Dir.Unit(c.Owner)
}

// cannibalizeTarget finds a nearby dead humanoid or undead, then a
// corpse. With neither, the cast fails and its cooldown is refunded.
func (a *Attempt) cannibalizeTarget(eff int) {
	r := a.Spell.Range.Max
	found := a.env.Space.NearestUnit(a.caster.Pos, r, func(u *world.Unit) bool {
		return u != a.caster && !u.IsAlive() && edible(u)
	})
	if found != nil {
		a.addUnitTarget(found, eff, false)
		return
	}
	if c := a.env.Dir.NearestCorpse(a.caster.Pos, r); c != nil {
		a.Targets.SetCorpse(c)
		a.addUnitTarget(a.env.Dir.Unit(c.Owner), eff, false)
		return
	}

	a.debug("no edible corpse in range", zap.Float64("range", r))
	if a.caster.IsPlayer() {
		a.env.Ledger.Cooldowns(a.caster).RemoveSpell(a.Spell.ID)
	}
	a.sendCastResult(types.CastFailedNoEdibleCorpses)
	a.finish(false)
}

// Creature types a cannibalize may feed on.
const (
	creatureTypeUndead   = 6
	creatureTypeHumanoid = 7
)

func edible(u *world.Unit) bool {
	return u.IsPlayer() || u.CreatureType == creatureTypeUndead || u.CreatureType == creatureTypeHumanoid
}

// randAngle draws a full-circle angle from the attempt's RNG.
func (a *Attempt) randAngle() float64 {
	return a.env.Rand.Float64() * 2 * math.Pi
}
