package spell

import (
	"github.com/samber/oops"

	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/rules"
	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/types"
)

// pvpChannelCap bounds a hostile channel between two players.
const pvpChannelCap = 10000

// Prepare validates the cast and starts it. Triggered and instant
// generic casts run to completion inside Prepare. The result is the
// precondition outcome; CastOK does not mean the spell has landed.
func (a *Attempt) Prepare(snap *targets.Snapshot) types.CastResult {
	if a.fsm.Current() != stNull {
		a.structural(errAlreadyPrepared(a))
		return types.CastFailedDontReport
	}
	a.transition(evPrepare)
	if snap != nil {
		a.Targets = snap
	}
	a.Targets.Update(a.env.Dir)
	a.castPos = a.caster.Pos

	if a.explicit && a.env.Slots != nil && a.env.Slots.Casting(a.casterGUID, a) {
		return a.refuse(types.CastFailedSpellInProgress)
	}

	switch {
	case a.caster.IsPlayer() && a.Spell.Disabled&types.DisableForPlayer != 0,
		a.caster.IsPet() && a.Spell.Disabled&types.DisableForPet != 0:
		return a.refuse(types.CastFailedSpellUnavailable)
	case a.caster.IsCreature() && !a.caster.IsPet() && a.Spell.Disabled&types.DisableForCreature != 0:
		a.finish(false)
		return types.CastFailedSpellUnavailable
	}

	if a.castItem == nil {
		a.powerCost = rules.PowerCost(a.Spell, a.caster)
	}

	if !state.IsAutoRepeat(a.Spell) {
		if r := rules.CheckCast(a.ruleContext(true)); r != types.CastOK {
			if a.triggeredByAura != nil {
				a.sendChannelUpdate(0)
				a.triggeredByAura.RemainingMS = 0
			}
			return a.refuse(r)
		}
	}

	a.castTime = a.computeCastTime()
	if state.IsChanneled(a.Spell) {
		a.movementLocked = a.Spell.ChannelInterruptFlags&types.ChannelInterruptMovement != 0
	} else {
		a.movementLocked = a.castTime > 0 && a.Spell.InterruptFlags&types.InterruptMovement != 0
	}
	if a.movementLocked {
		a.caster.SetFlag(types.UnitFlagCastingNotMove)
	}
	a.timer = a.castTime

	if a.triggered {
		a.cast(true)
		return types.CastOK
	}

	if a.has(types.AttrBreaksStealth) {
		a.breakStealth()
	}
	if a.env.Slots != nil {
		a.env.Slots.Set(a)
	}
	a.caster.SetFlag(types.UnitFlagCasting)
	a.sendSpellStart()
	a.triggerGlobalCooldown()

	if a.castTime == 0 && a.castItemGUID == 0 && a.slot == types.SlotGeneric {
		a.cast(true)
	}
	return types.CastOK
}

func errAlreadyPrepared(a *Attempt) error {
	return oops.In("spell").Code("already_prepared").
		With("spell_id", a.Spell.ID).With("state", a.fsm.Current()).
		Errorf("attempt prepared twice")
}

func (a *Attempt) refuse(r types.CastResult) types.CastResult {
	a.sendCastResult(r)
	a.finish(false)
	return r
}

// computeCastTime scales the base cast time by the caster's cast speed.
func (a *Attempt) computeCastTime() int {
	ct := a.Spell.CastTimeMS
	if ct <= 0 {
		return 0
	}
	if s := a.caster.CastSpeed; s > 0 {
		ct = int(float64(ct) * s)
	}
	return ct
}

func (a *Attempt) breakStealth() {
	for _, au := range a.caster.AurasOfType(types.AuraModStealth) {
		a.caster.RemoveAuraInstance(au)
	}
	a.caster.ClearFlag(types.UnitFlagStealthed)
}

// casterMoved reports movement since the cast started.
func (a *Attempt) casterMoved() bool {
	p := a.caster.Pos
	return a.caster.IsMoving() || p.X != a.castPos.X || p.Y != a.castPos.Y || p.Z != a.castPos.Z
}

// Update advances a preparing or channeling attempt by diff ms.
func (a *Attempt) Update(diff int) {
	if a.IsFinished() {
		return
	}
	a.updatePointers()
	if a.lostUnitTarget() {
		a.Cancel(types.CastFailedIntLostTarget)
		return
	}
	if a.timer != 0 && a.movementLocked && !a.isAutoRepeatOrSwing() && !a.triggered && a.casterMoved() {
		a.Cancel(types.CastFailedIntCasterMoved)
		return
	}

	switch a.State() {
	case types.StatePreparing:
		a.timer = countDown(a.timer, diff)
		if a.timer == 0 {
			a.cast(a.Spell.CastTimeMS == 0)
		}

	case types.StateCasting:
		if a.timer > 0 {
			if a.caster.IsPlayer() && a.movementLocked && a.caster.IsFalling() {
				a.Cancel(types.CastFailedIntCasterJumped)
				return
			}
			if !a.aliveTargetPresent() {
				a.sendChannelUpdate(0)
				a.finish(true)
				return
			}
			if a.channelBreaksOutOfRange() {
				t := a.Targets.Unit()
				if t == nil || a.caster.Distance(t) > a.Spell.Range.Max+channelRangeExitMargin {
					a.Cancel(types.CastFailedInterrupted)
					return
				}
			}
			a.timer = countDown(a.timer, diff)
		}
		if a.timer == 0 {
			a.sendChannelUpdate(0)
			if !a.isAutoRepeatOrSwing() {
				a.creditChannelTargets()
			}
			a.finish(true)
		}
	}
}

func countDown(timer, diff int) int {
	if timer -= diff; timer < 0 {
		return 0
	}
	return timer
}

// aliveTargetPresent reports whether every effect that needs a living
// target still has one.
func (a *Attempt) aliveTargetPresent() bool {
	need := a.needAlive
	if need == 0 {
		return true
	}
	deathOnly := a.has(types.AttrDeathOnly)
	for _, t := range a.units {
		if t.Deleted || t.Miss != types.MissNone || need&t.EffectMask == 0 {
			continue
		}
		if u := a.resolveUnit(t.GUID); u != nil && u.IsAlive() != deathOnly {
			need &^= t.EffectMask
		}
	}
	return need == 0
}

func (a *Attempt) creditChannelTargets() {
	for _, t := range a.units {
		if t.Deleted {
			continue
		}
		if u := a.resolveUnit(t.GUID); u != nil && u.IsCreature() {
			a.creditTarget(u.Entry, u.GUID)
		}
	}
	for _, t := range a.gos {
		if t.Deleted {
			continue
		}
		if g := a.env.Dir.GameObject(t.GUID); g != nil {
			a.creditTarget(g.Entry, g.GUID)
		}
	}
}

// cast commits the attempt: final checks, target resolution, resource
// costs and either immediate or delayed application.
func (a *Attempt) cast(skipCheck bool) {
	if !a.updatePointers() {
		a.finish(false)
		return
	}
	if !a.triggered {
		if t := a.Targets.Unit(); t != nil && t.IsAlive() && !t.IsFriendlyTo(a.caster) &&
			(t.HasAuraType(types.AuraModStealth) || t.HasAuraType(types.AuraModInvisibility)) &&
			!a.caster.CanDetect(t) {
			a.refuse(types.CastFailedBadTargets)
			return
		}
	}

	a.executing = true
	defer func() { a.executing = false }()

	if a.lostUnitTarget() {
		a.Cancel(types.CastFailedIntLostTarget)
		return
	}
	paysCosts := !a.triggered || a.isAutoShoot()
	if paysCosts {
		if r := rules.CheckPower(a.ruleContext(false)); r != types.CastOK {
			a.refuse(r)
			return
		}
	}
	if !skipCheck {
		if r := rules.CheckCast(a.ruleContext(false)); r != types.CastOK {
			a.refuse(r)
			return
		}
	}

	if !a.hasRecords() {
		a.ResolveTargets()
	}
	if a.canReflect {
		a.checkForReflects()
	}
	if a.IsFinished() {
		return
	}

	if paysCosts {
		a.takeReagents()
	}
	a.sendSpellCooldown()
	a.sendSpellGo()

	if a.isDelayed() && !state.IsChanneled(a.Spell) {
		a.takeCastItem()
		a.immediateHandled = false
		a.transition(evDelay)
		a.delayStart = a.env.now()
	} else {
		a.handleImmediate()
	}

	if paysCosts {
		a.takePower()
	}
}

// handleImmediate applies every record at once. Channels move to
// Casting and are finished by Update.
func (a *Attempt) handleImmediate() {
	if state.IsChanneled(a.Spell) {
		dur := state.Duration(a.Spell)
		if dur > 0 {
			if dur > pvpChannelCap && a.hostileChannel() {
				dur = pvpChannelCap
			}
			a.transition(evChannel)
		}
		a.channelMS = dur
		a.timer = dur
		a.sendChannelStart(dur)
	}

	a.immediatePhase()
	for _, t := range a.units {
		if !t.Deleted {
			a.applyUnit(t)
		}
	}
	for _, t := range a.gos {
		if !t.Deleted {
			a.applyGO(t)
		}
	}
	a.finishPhase()
	a.takeCastItem()

	if a.State() != types.StateCasting {
		a.finish(true)
	}
}

// hostileChannel reports a channel between two hostile players, judged
// on the first record.
func (a *Attempt) hostileChannel() bool {
	if len(a.units) == 0 {
		return false
	}
	u := a.resolveUnit(a.units[0].GUID)
	cp, tp := a.ownerPlayer(a.caster), a.ownerPlayer(u)
	return cp != nil && tp != nil && cp.IsHostileTo(tp)
}

// immediatePhase runs the effects that do not land on a record: untargeted
// script events, item effects and destination or self effects.
func (a *Attempt) immediatePhase() {
	a.needLog = true
	var done [types.MaxEffectIndex]bool
	for j, e := range a.Spell.Effects {
		switch e.Type {
		case types.EffectNone:
			continue
		case types.EffectSendEvent:
			if !a.haveTargetsForEffect(j) {
				a.applyEffect(j, nil, nil, nil, nil, nil)
				done[j] = true
				continue
			}
		case types.EffectSchoolDamage:
			a.needLog = false
		}
	}

	for _, t := range a.items {
		a.applyItem(t)
	}

	if a.origCaster == nil || a.Spell.ID == spellNoDestEffects {
		return
	}
	for j, e := range a.Spell.Effects {
		if e.Type == types.EffectNone || done[j] {
			continue
		}
		switch req := selector.RequirementOf(e.Type); {
		case req == selector.RequireDest:
			a.ensureDst()
			a.applyEffect(j, a.origCaster, nil, nil, nil, nil)
		case req == selector.RequireNone, a.Spell.ID == spellGroundEffect:
			a.applyEffect(j, a.origCaster, nil, nil, nil, nil)
		}
	}
}

func (a *Attempt) haveTargetsForEffect(eff int) bool {
	bit := uint8(1) << eff
	for _, t := range a.units {
		if !t.Deleted && t.EffectMask&bit != 0 {
			return true
		}
	}
	for _, t := range a.gos {
		if !t.Deleted && t.EffectMask&bit != 0 {
			return true
		}
	}
	for _, t := range a.items {
		if t.EffectMask&bit != 0 {
			return true
		}
	}
	return false
}

func (a *Attempt) finishPhase() {
	if a.needLog {
		a.sendLogExecute()
	}
}

// HandleDelayed applies the records whose missile has arrived after
// elapsed ms and returns the time until the next arrival. Zero means the
// attempt has finished. A destination missile lands everything at once.
func (a *Attempt) HandleDelayed(elapsed int64) int64 {
	if a.IsFinished() {
		return 0
	}
	a.updatePointers()
	if !a.immediateHandled {
		a.immediatePhase()
		a.immediateHandled = true
	}

	single := a.Targets.Has(types.TargetFlagDest)
	var next int64
	wait := func(delay int64) {
		if rem := delay - elapsed; next == 0 || rem < next {
			next = rem
		}
	}
	for _, t := range a.units {
		if t.Deleted || t.Processed {
			continue
		}
		if single || t.Delay <= elapsed {
			a.applyUnit(t)
		} else {
			wait(t.Delay)
		}
	}
	for _, t := range a.gos {
		if t.Deleted || t.Processed {
			continue
		}
		if single || t.Delay <= elapsed {
			a.applyGO(t)
		} else {
			wait(t.Delay)
		}
	}

	if next == 0 {
		a.finishPhase()
		a.finish(true)
		return 0
	}
	a.canTrigger = false
	return next
}

// Cancel aborts the attempt. A second cancel, or a cancel after finish,
// does nothing.
func (a *Attempt) Cancel(reason types.CastResult) {
	if a.IsFinished() {
		return
	}
	old := a.State()
	a.cancelling = true

	switch old {
	case types.StatePreparing:
		a.cancelGlobalCooldown()
		fallthrough
	case types.StateDelayed:
		a.sendInterrupted()
		a.sendCastResult(reason)

	case types.StateCasting:
		for _, t := range a.units {
			if t.Deleted || t.Miss != types.MissNone {
				continue
			}
			if u := a.resolveUnit(t.GUID); u != nil && u.IsAlive() {
				u.RemoveAuraByCaster(a.Spell.ID, a.origCasterGUID)
			}
		}
		a.caster.RemoveAuraByCaster(a.Spell.ID, a.origCasterGUID)
		a.sendChannelUpdate(0)
		if !state.IsChanneled(a.Spell) {
			a.sendInterrupted()
			a.sendCastResult(reason)
		}
	}

	if a.env.Slots != nil {
		a.env.Slots.Clear(a)
	}
	a.cancelling = false
	a.finish(false)
}

// finish ends the attempt once. A successful finish pays out leech,
// resets swing timers and casts the queued trigger spells.
func (a *Attempt) finish(ok bool) {
	if a.fsm.Current() == stFinished {
		return
	}
	a.transition(evFinish)
	if a.env.Slots == nil || !a.env.Slots.Casting(a.casterGUID, a) {
		a.caster.ClearFlag(types.UnitFlagCasting | types.UnitFlagCastingNotMove)
	}
	if !ok {
		return
	}

	if state.HasEffect(a.Spell, types.EffectAddExtraAttacks) {
		a.caster.ExtraAttacks = 0
	}
	if a.leech != 0 {
		gain := a.caster.ModifyHealth(a.leech)
		a.notify(events.SpellHeal, map[string]any{
			"target": a.casterGUID,
			"amount": a.leech,
			"gain":   gain,
			"leech":  true,
		})
	}
	if a.has(types.AttrResetMeleeTimer) {
		a.caster.MeleeTimerResets++
		if !a.has(types.AttrNotResetAutoshot) {
			a.caster.RangedResets++
		}
	}
	if len(a.triggers) > 0 && a.env.CastTriggered != nil {
		var orig types.GUID
		if a.origCasterGUID != a.casterGUID {
			orig = a.origCasterGUID
		}
		for _, id := range a.triggers {
			a.env.CastTriggered(a.caster, id, a.Targets.Unit(), orig)
		}
	}
	a.triggers = nil
	if a.has(types.AttrStopAttackTarget) {
		a.caster.Attacking = false
		a.caster.Victim = 0
	}
}

// Delayed pushes a preparing cast back by a quarter of its cast time.
// The timer never exceeds the full cast time.
func (a *Attempt) Delayed() {
	if a.State() != types.StatePreparing || a.castTime == 0 {
		return
	}
	if a.env.Combat.ResistPushback(a.caster) {
		return
	}
	delay := a.castTime / 4
	if a.timer+delay > a.castTime {
		delay = a.castTime - a.timer
		a.timer = a.castTime
	} else {
		a.timer += delay
	}
	a.notify(events.Pushback, map[string]any{"delay": delay, "remaining": a.timer})
}

// DelayedChannel cuts a quarter of the channel duration from the time
// left and shortens the auras the channel applied by the same amount.
func (a *Attempt) DelayedChannel() {
	if a.State() != types.StateCasting {
		return
	}
	if a.env.Combat.ResistPushback(a.caster) {
		return
	}
	delay := a.channelMS / 4
	if a.timer < delay {
		delay = a.timer
		a.timer = 0
	} else {
		a.timer -= delay
	}
	for _, t := range a.units {
		if t.Deleted || t.Miss != types.MissNone {
			continue
		}
		if u := a.resolveUnit(t.GUID); u != nil {
			u.DelayAura(a.Spell.ID, a.origCasterGUID, delay)
		}
	}
	a.notify(events.Pushback, map[string]any{"delay": delay, "remaining": a.timer})
	a.sendChannelUpdate(a.timer)
}
