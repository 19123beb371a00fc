package spell

import (
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/effects"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// applyUnit runs every effect of one unit record once. A reflected
// record lands on the caster when the reflect roll hit.
func (a *Attempt) applyUnit(t *UnitTarget) {
	if t.Processed || t.Deleted {
		return
	}
	t.Processed = true
	if t.EffectMask == 0 {
		return
	}
	unit := a.resolveUnit(t.GUID)
	if unit == nil {
		return
	}
	caster := a.origCaster
	if caster == nil {
		return
	}

	damage, healing := t.Damage, 0
	victim := unit
	landed := false
	switch t.Miss {
	case types.MissNone:
		landed = a.hitUnit(unit, t.EffectMask, &damage, &healing)
	case types.MissReflect:
		if t.Reflect == types.MissNone && rules.CheckTargetCreatureType(a.ruleContext(false), a.caster) {
			victim = a.caster
			landed = a.hitUnit(a.caster, t.EffectMask, &damage, &healing)
		}
	}

	if landed {
		if a.has(types.AttrReqComboPoints) && caster.IsPlayer() && caster == a.caster {
			caster.ComboPoints = 0
		}
		switch {
		case healing > 0:
			a.dealHealing(caster, victim, healing)
		case damage > 0:
			a.dealDamage(caster, victim, damage)
		}
	}

	if unit.IsCreature() && !unit.IsPet() && !a.isAutoRepeatOrSwing() && a.State() != types.StateCasting {
		a.creditTarget(unit.Entry, unit.GUID)
	}

	if !a.caster.IsFriendlyTo(unit) && !state.IsPositiveSpell(a.Spell) && !a.caster.HasFlag(types.UnitFlagGameMaster) {
		a.startCombat(unit)
	}
	if unit.IsPvP() && a.caster.IsPlayer() && a.caster != unit {
		a.caster.SetFlag(types.UnitFlagPvP)
	}
}

// hitUnit applies the masked effects to unit and reports whether the
// spell landed at all.
func (a *Attempt) hitUnit(unit *world.Unit, mask uint8, damage, healing *int) bool {
	if mask == 0 {
		return false
	}
	if a.isDelayed() && !a.has(types.AttrUnaffectedByInvulnerability) && unit.IsImmuneToSchool(a.Spell.School) {
		a.sendSpellMiss(unit.GUID, types.MissImmune)
		return false
	}

	if a.caster != unit {
		if unit.CharmerOrOwner() != a.casterGUID && !rules.HasQuirk(a.Spell.ID, rules.QuirkIgnoreNotAttackable) &&
			unit.HasFlag(types.UnitFlagSpawning) {
			a.sendSpellMiss(unit.GUID, types.MissEvade)
			return false
		}
		hostile := (a.origCaster != nil && !a.origCaster.IsFriendlyTo(unit)) || !a.caster.IsFriendlyTo(unit)
		if hostile {
			hidden := (unit.HasAuraType(types.AuraModInvisibility) || unit.HasAuraType(types.AuraModStealth)) &&
				!a.caster.CanDetect(unit)
			if hidden && a.isDelayed() && unit == a.Targets.Unit() {
				a.debug("delayed spell lost hidden target", zap.Uint64("target", uint64(unit.GUID)))
				return false
			}
		} else {
			if !friendlyFireAllowed[a.Spell.ID] && a.isDelayed() && unit.IsPlayer() && !state.IsPositiveSpell(a.Spell) {
				a.sendSpellMiss(unit.GUID, types.MissEvade)
				return false
			}
			if unit.HasFlag(types.UnitFlagInCombat) && !a.has(types.AttrNoInitialAggro) {
				a.caster.SetFlag(types.UnitFlagInCombat)
			}
		}
	}

	for i := 0; i < types.MaxEffectIndex; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		e := a.Spell.Effects[i]
		if unit.IsImmuneToMechanic(e.Mechanic) {
			continue
		}
		if chance := a.env.Combat.MechanicResistChance(unit, e.Mechanic); chance > 0 && chance > a.env.Rand.Intn(100) {
			a.sendSpellMiss(unit.GUID, types.MissResist)
			continue
		}
		a.applyEffect(i, unit, nil, nil, damage, healing)
	}

	if mask&1 != 0 && a.canTrigger {
		for _, ct := range a.Spell.TriggerChance {
			if a.env.Rand.Float64()*100 < ct.Chance {
				a.castTriggered(ct.Spell, unit)
			}
		}
	}

	for _, id := range a.Spell.LinkedOnHit {
		switch {
		case id < 0:
			unit.RemoveAura(uint32(-id))
		case a.env.CastTriggered != nil:
			a.env.CastTriggered(unit, uint32(id), unit, a.casterGUID)
		}
	}
	return true
}

// applyGO runs every effect of one game object record once.
func (a *Attempt) applyGO(t *GOTarget) {
	if t.Processed || t.Deleted {
		return
	}
	t.Processed = true
	if t.EffectMask == 0 {
		return
	}
	g := a.env.Dir.GameObject(t.GUID)
	if g == nil {
		return
	}
	for i := 0; i < types.MaxEffectIndex; i++ {
		if t.EffectMask&(1<<i) != 0 {
			a.applyEffect(i, nil, g, nil, nil, nil)
		}
	}
	if !a.isAutoRepeatOrSwing() && a.State() != types.StateCasting {
		a.creditTarget(g.Entry, g.GUID)
	}
}

func (a *Attempt) applyItem(t *ItemTarget) {
	if t.EffectMask == 0 {
		return
	}
	it := a.env.Dir.Item(t.GUID)
	if it == nil {
		return
	}
	for i := 0; i < types.MaxEffectIndex; i++ {
		if t.EffectMask&(1<<i) != 0 {
			a.applyEffect(i, nil, nil, it, nil, nil)
		}
	}
}

// applyEffect hands one (target, effect) pair to the effect registry.
func (a *Attempt) applyEffect(eff int, unit *world.Unit, g *world.GameObject, it *world.Item, damage, healing *int) {
	if a.env.Effects == nil {
		return
	}
	c := &effects.Context{
		CastID:     a.ID.String(),
		Spell:      a.Spell,
		EffIndex:   eff,
		Caster:     a.caster,
		OrigCaster: a.origCaster,
		Unit:       unit,
		GO:         g,
		Item:       it,
		BasePoints: a.basePoints[eff],
		Now:        a.env.now(),
		Rand:       a.env.Rand,
		Damage:     damage,
		Healing:    healing,
		Leech:      &a.leech,
		Trigger: func(id uint32) {
			a.triggers = append(a.triggers, id)
		},
		Cast:      a.castTriggered,
		Interrupt: a.interruptUnit,
	}
	if a.Targets.Has(types.TargetFlagDest) {
		c.Dest, c.HasDest, c.DestMap = a.Targets.Dst, true, a.Targets.DstMap
	}
	for _, ev := range a.env.Effects.Apply(c) {
		a.env.emit(ev)
	}
}

// interruptUnit cancels the casts an interrupt effect can break.
func (a *Attempt) interruptUnit(u *world.Unit) {
	if a.env.Slots == nil {
		return
	}
	for _, o := range a.env.Slots.Active(u.GUID) {
		if o == a || o.slot == types.SlotMelee || o.slot == types.SlotAutorepeat {
			continue
		}
		o.Cancel(types.CastFailedInterrupted)
	}
}

// rollCrit scales an amount by the crit bonus of the damage class.
func (a *Attempt) rollCrit(caster *world.Unit, amount int, heal bool) (int, bool) {
	chance := a.env.Combat.CritChance(caster, a.Spell)
	if chance <= 0 || a.env.Rand.Float64()*100 >= chance {
		return amount, false
	}
	switch {
	case heal:
		return amount * 3 / 2, true
	case a.Spell.DmgClass == types.DamageClassMelee || a.Spell.DmgClass == types.DamageClassRanged:
		return amount * 2, true
	}
	return amount * 3 / 2, true
}

func (a *Attempt) dealHealing(caster, victim *world.Unit, amount int) {
	amount, crit := a.rollCrit(caster, amount, true)
	gain := victim.ModifyHealth(amount)
	a.notify(events.SpellHeal, map[string]any{
		"target": victim.GUID,
		"amount": amount,
		"gain":   gain,
		"crit":   crit,
	})
}

func (a *Attempt) dealDamage(caster, victim *world.Unit, amount int) {
	if victim.IsImmuneToSchool(a.Spell.School) && !a.has(types.AttrUnaffectedByInvulnerability) {
		a.sendSpellMiss(victim.GUID, types.MissImmune)
		return
	}
	amount, crit := a.rollCrit(caster, amount, false)
	dealt := -victim.ModifyHealth(-amount)
	a.notify(events.SpellDamage, map[string]any{
		"target":    victim.GUID,
		"amount":    dealt,
		"remaining": victim.Health,
		"crit":      crit,
		"kill":      !victim.IsAlive(),
	})
	if dealt > 0 && victim != a.caster && victim.IsAlive() {
		a.pushBack(victim)
	}
}

// pushBack delays the casts of a unit that just took damage.
func (a *Attempt) pushBack(victim *world.Unit) {
	if a.env.Slots == nil {
		return
	}
	for _, o := range a.env.Slots.Active(victim.GUID) {
		switch o.State() {
		case types.StatePreparing:
			if o.Spell.InterruptFlags&types.InterruptPushBack != 0 {
				o.Delayed()
			}
		case types.StateCasting:
			if o.Spell.ChannelInterruptFlags&types.ChannelInterruptDelay != 0 {
				o.DelayedChannel()
			}
		}
	}
}

// startCombat puts both sides in combat. Creatures pick the caster as
// their victim unless the spell carries no initial aggro.
func (a *Attempt) startCombat(unit *world.Unit) {
	a.caster.SetFlag(types.UnitFlagInCombat)
	unit.SetFlag(types.UnitFlagInCombat)
	if a.has(types.AttrNoInitialAggro) {
		return
	}
	if unit.IsCreature() && unit.Victim == 0 {
		unit.Victim = a.casterGUID
		unit.Attacking = true
	}
}

// creditTarget reports a quest objective hit to the controlling player.
func (a *Attempt) creditTarget(entry uint32, g types.GUID) {
	p := a.ownerPlayer(a.caster)
	if p == nil {
		return
	}
	a.notify(events.CreatureCredit, map[string]any{
		"player": p.GUID,
		"entry":  entry,
		"target": g,
	})
}

func (a *Attempt) isAutoRepeatOrSwing() bool {
	return a.slot == types.SlotAutorepeat || a.slot == types.SlotMelee
}
