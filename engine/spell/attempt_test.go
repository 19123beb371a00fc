package spell

import (
	"testing"

	"github.com/nathoo/spellcore/engine/effects"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// fakeCombat is a hit table with scripted outcomes per target.
type fakeCombat struct {
	miss    map[types.GUID]types.SpellMissInfo
	reflect map[types.GUID]types.SpellMissInfo
	back    types.SpellMissInfo
	crit    float64
	resist  bool
}

func (c *fakeCombat) HitResult(caster, target *world.Unit, _ *types.SpellDef, canMiss bool) types.SpellMissInfo {
	if caster == target {
		return c.back
	}
	if !canMiss {
		return types.MissNone
	}
	return c.miss[target.GUID]
}

func (c *fakeCombat) ReflectResult(_, target *world.Unit, _ *types.SpellDef) types.SpellMissInfo {
	return c.reflect[target.GUID]
}

func (c *fakeCombat) CritChance(*world.Unit, *types.SpellDef) float64 { return c.crit }
func (c *fakeCombat) ResistPushback(*world.Unit) bool                 { return c.resist }
func (c *fakeCombat) MechanicResistChance(*world.Unit, types.Mechanic) int {
	return 0
}

// fixedRand always draws the lowest integer and the same fraction.
type fixedRand struct{ f float64 }

func (r fixedRand) Intn(int) int      { return 0 }
func (r fixedRand) Float64() float64 { return r.f }

type triggerCall struct {
	caster types.GUID
	spell  uint32
	target types.GUID
	orig   types.GUID
}

type fixture struct {
	m         *world.Map
	env       *Env
	rec       *events.Recorder
	combat    *fakeCombat
	caster    *world.Unit
	target    *world.Unit
	triggered []triggerCall
}

func newFixture() *fixture {
	m := world.NewMap(0, nil)
	caster := m.AddUnit(world.NewUnit(1, "mage", types.KindPlayer))
	caster.Team = 1
	caster.Level = 60
	caster.Health, caster.MaxHealth = 1000, 1000
	caster.Power[types.PowerMana] = 1000
	caster.MaxPower[types.PowerMana] = 1000

	f := &fixture{
		m:      m,
		rec:    &events.Recorder{},
		combat: &fakeCombat{miss: map[types.GUID]types.SpellMissInfo{}, reflect: map[types.GUID]types.SpellMissInfo{}},
		caster: caster,
	}
	f.target = f.enemy(2, "wolf", 10, 0)
	f.env = &Env{
		Dir:     m,
		Space:   m,
		Terrain: m.Terrain,
		Combat:  f.combat,
		Ledger:  m,
		Effects: effects.Default(),
		Sink:    f.rec,
		Rand:    fixedRand{f: 0.99},
		Defs:    state.NewDefs(),
		Slots:   NewSlotTable(),
		Now:     m.Now,
		CastTriggered: func(c *world.Unit, id uint32, t *world.Unit, orig types.GUID) {
			call := triggerCall{caster: c.GUID, spell: id, orig: orig}
			if t != nil {
				call.target = t.GUID
			}
			f.triggered = append(f.triggered, call)
		},
	}
	return f
}

func (f *fixture) enemy(guid types.GUID, name string, x, y float64) *world.Unit {
	u := f.m.AddUnit(world.NewUnit(guid, name, types.KindCreature))
	u.Entry = uint32(guid) + 100
	u.Team = 2
	u.Level = 60
	u.Health, u.MaxHealth = 500, 500
	u.Pos = types.Position{X: x, Y: y}
	return u
}

func fireball() *types.SpellDef {
	return &types.SpellDef{
		ID:       133,
		Name:     "Fireball",
		School:   types.SchoolFire,
		DmgClass: types.DamageClassMagic,
		Level:    1,
		Range:    types.Range{Max: 30},
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetUnitEnemy, BasePoints: 100},
		},
	}
}

func slowFireball() *types.SpellDef {
	s := fireball()
	s.CastTimeMS = 1500
	return s
}

func (f *fixture) attempt(t *testing.T, caster *world.Unit, s *types.SpellDef, opts ...Option) *Attempt {
	t.Helper()
	a, err := New(f.env, caster, s, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func (f *fixture) cast(t *testing.T, s *types.SpellDef, target *world.Unit, opts ...Option) (*Attempt, types.CastResult) {
	t.Helper()
	a := f.attempt(t, f.caster, s, opts...)
	snap := &targets.Snapshot{}
	if target != nil {
		snap.SetUnit(target)
	}
	return a, a.Prepare(snap)
}

func failCodes(rec *events.Recorder) []int {
	var out []int
	for _, e := range rec.OfType(events.CastFailed) {
		out = append(out, e.Data["code"].(int))
	}
	return out
}

func TestNew_RequiresSpellAndCaster(t *testing.T) {
	f := newFixture()
	if _, err := New(f.env, f.caster, nil); err == nil {
		t.Errorf("New(nil spell) error = nil, want error")
	}
	if _, err := New(f.env, nil, fireball()); err == nil {
		t.Errorf("New(nil caster) error = nil, want error")
	}
}

func TestAttempt_InstantCastResolves(t *testing.T) {
	f := newFixture()
	a, r := f.cast(t, fireball(), f.target)
	if r != types.CastOK {
		t.Fatalf("Prepare = %v, want CastOK", r)
	}
	if a.State() != types.StateFinished {
		t.Errorf("State = %v, want finished", a.State())
	}
	if f.target.Health != 400 {
		t.Errorf("target health = %d, want 400", f.target.Health)
	}
	if n := f.rec.Count(events.SpellGo); n != 1 {
		t.Errorf("spell_go count = %d, want 1", n)
	}
	dmg := f.rec.OfType(events.SpellDamage)
	if len(dmg) != 1 || dmg[0].Data["amount"] != 100 {
		t.Errorf("spell_damage = %v, want one event of 100", dmg)
	}
	if !f.target.HasFlag(types.UnitFlagInCombat) || !f.caster.HasFlag(types.UnitFlagInCombat) {
		t.Errorf("combat flags not set on both sides")
	}
	if f.target.Victim != f.caster.GUID {
		t.Errorf("target victim = %d, want caster", f.target.Victim)
	}
	if f.caster.HasFlag(types.UnitFlagCasting) {
		t.Errorf("caster still flagged casting after finish")
	}
}

func TestAttempt_PrepareTwiceRefused(t *testing.T) {
	f := newFixture()
	a, _ := f.cast(t, slowFireball(), f.target)
	if r := a.Prepare(nil); r != types.CastFailedDontReport {
		t.Errorf("second Prepare = %v, want CastFailedDontReport", r)
	}
	if a.State() != types.StatePreparing {
		t.Errorf("State = %v, want preparing", a.State())
	}
}

func TestAttempt_CastTimeCompletesOnUpdate(t *testing.T) {
	f := newFixture()
	a, _ := f.cast(t, slowFireball(), f.target)
	if a.State() != types.StatePreparing {
		t.Fatalf("State = %v, want preparing", a.State())
	}
	if !f.caster.HasFlag(types.UnitFlagCasting) {
		t.Errorf("caster not flagged casting while preparing")
	}

	a.Update(1000)
	if a.Timer() != 500 {
		t.Errorf("Timer = %d, want 500", a.Timer())
	}
	if f.target.Health != 500 {
		t.Errorf("target hit before the cast completed")
	}

	a.Update(500)
	if a.State() != types.StateFinished {
		t.Errorf("State = %v, want finished", a.State())
	}
	if f.target.Health != 400 {
		t.Errorf("target health = %d, want 400", f.target.Health)
	}
}

func TestAttempt_CastSpeedScalesCastTime(t *testing.T) {
	f := newFixture()
	f.caster.CastSpeed = 0.5
	a, _ := f.cast(t, slowFireball(), f.target)
	if a.CastTime() != 750 {
		t.Errorf("CastTime = %d, want 750", a.CastTime())
	}
}

func TestAttempt_CancelIsIdempotent(t *testing.T) {
	f := newFixture()
	a, _ := f.cast(t, slowFireball(), f.target)

	a.Cancel(types.CastFailedInterrupted)
	a.Cancel(types.CastFailedInterrupted)

	if a.State() != types.StateFinished {
		t.Errorf("State = %v, want finished", a.State())
	}
	if n := f.rec.Count(events.Interrupted); n != 1 {
		t.Errorf("interrupted count = %d, want 1", n)
	}
	if codes := failCodes(f.rec); len(codes) != 1 || codes[0] != int(types.CastFailedInterrupted) {
		t.Errorf("cast_failed codes = %v, want [%d]", codes, types.CastFailedInterrupted)
	}
	if !a.Deletable() {
		t.Errorf("Deletable = false after cancel")
	}

	a.Update(2000)
	if f.rec.Count(events.SpellGo) != 0 || f.target.Health != 500 {
		t.Errorf("cancelled attempt still resolved")
	}
}

func TestAttempt_CancelAfterFinishIsNoop(t *testing.T) {
	f := newFixture()
	a, _ := f.cast(t, fireball(), f.target)
	before := len(f.rec.Events)
	a.Cancel(types.CastFailedInterrupted)
	if len(f.rec.Events) != before {
		t.Errorf("cancel after finish emitted %d events", len(f.rec.Events)-before)
	}
}

func TestAttempt_MovementInterruptsCast(t *testing.T) {
	f := newFixture()
	s := slowFireball()
	s.InterruptFlags = types.InterruptMovement
	a, _ := f.cast(t, s, f.target)
	if !f.caster.HasFlag(types.UnitFlagCastingNotMove) {
		t.Errorf("caster not movement locked")
	}

	f.caster.Pos.X = 3
	a.Update(100)

	if a.State() != types.StateFinished {
		t.Errorf("State = %v, want finished", a.State())
	}
	if codes := failCodes(f.rec); len(codes) != 1 || codes[0] != int(types.CastFailedIntCasterMoved) {
		t.Errorf("cast_failed codes = %v, want caster moved", codes)
	}
	if f.caster.HasFlag(types.UnitFlagCastingNotMove) {
		t.Errorf("movement lock kept after cancel")
	}
}

func TestAttempt_LostTargetCancels(t *testing.T) {
	f := newFixture()
	a, _ := f.cast(t, slowFireball(), f.target)
	f.m.RemoveUnit(f.target.GUID)
	a.Update(100)
	if codes := failCodes(f.rec); len(codes) != 1 || codes[0] != int(types.CastFailedIntLostTarget) {
		t.Errorf("cast_failed codes = %v, want lost target", codes)
	}
}

func TestAttempt_ExplicitRefusedWhileCasting(t *testing.T) {
	f := newFixture()
	first, _ := f.cast(t, slowFireball(), f.target)
	second, r := f.cast(t, slowFireball(), f.target, Explicit())

	if r != types.CastFailedSpellInProgress {
		t.Errorf("second Prepare = %v, want CastFailedSpellInProgress", r)
	}
	if second.State() != types.StateFinished {
		t.Errorf("refused State = %v, want finished", second.State())
	}
	if first.State() != types.StatePreparing {
		t.Errorf("first State = %v, want preparing", first.State())
	}
}

func TestAttempt_NewCastReplacesSlot(t *testing.T) {
	f := newFixture()
	first, _ := f.cast(t, slowFireball(), f.target)
	second, _ := f.cast(t, slowFireball(), f.target)

	if first.State() != types.StateFinished {
		t.Errorf("first State = %v, want finished", first.State())
	}
	if codes := failCodes(f.rec); len(codes) != 1 || codes[0] != int(types.CastFailedIntByOtherCast) {
		t.Errorf("cast_failed codes = %v, want by other cast", codes)
	}
	if got := f.env.Slots.Get(f.caster.GUID, types.SlotGeneric); got != second {
		t.Errorf("generic slot holds %v, want second attempt", got)
	}
}

func TestAttempt_DisabledCreatureSpellIsSilent(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.Disabled = types.DisableForCreature
	a := f.attempt(t, f.target, s)
	snap := &targets.Snapshot{}
	snap.SetUnit(f.caster)

	if r := a.Prepare(snap); r != types.CastFailedSpellUnavailable {
		t.Errorf("Prepare = %v, want CastFailedSpellUnavailable", r)
	}
	if n := f.rec.Count(events.CastFailed); n != 0 {
		t.Errorf("cast_failed count = %d, want 0", n)
	}
}

func TestAttempt_PowerSpent(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.PowerType = types.PowerMana
	s.PowerCost = 30
	f.cast(t, s, f.target)

	if got := f.caster.Power[types.PowerMana]; got != 970 {
		t.Errorf("mana = %d, want 970", got)
	}
	spent := f.rec.OfType(events.PowerSpent)
	if len(spent) != 1 || spent[0].Data["amount"] != 30 {
		t.Errorf("power_spent = %v, want one event of 30", spent)
	}
}

func TestAttempt_FinisherSpendsComboPoints(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.Flags |= types.AttrReqComboPoints

	if _, r := f.cast(t, s, f.target); r != types.CastFailedNoComboPoints {
		t.Fatalf("Prepare without combo points = %v, want no_combo_points", r)
	}
	if f.target.Health != 500 {
		t.Errorf("target health = %d, want 500 after refused cast", f.target.Health)
	}

	f.caster.ComboPoints = 4
	if _, r := f.cast(t, s, f.target); r != types.CastOK {
		t.Fatalf("Prepare = %v, want CastOK", r)
	}
	if f.caster.ComboPoints != 0 {
		t.Errorf("combo points = %d, want 0 after the hit", f.caster.ComboPoints)
	}
	if f.target.Health != 400 {
		t.Errorf("target health = %d, want 400", f.target.Health)
	}
}

func TestAttempt_NotEnoughPowerRefused(t *testing.T) {
	f := newFixture()
	f.caster.Power[types.PowerMana] = 10
	s := fireball()
	s.PowerType = types.PowerMana
	s.PowerCost = 30

	_, r := f.cast(t, s, f.target)
	if r != types.CastFailedNoPower {
		t.Errorf("Prepare = %v, want CastFailedNoPower", r)
	}
	if f.target.Health != 500 {
		t.Errorf("target hit by a refused cast")
	}
}

func TestAttempt_GlobalCooldownCancelledWithCast(t *testing.T) {
	f := newFixture()
	s := slowFireball()
	s.StartRecoveryTimeMS = 1500
	s.StartRecoveryCategory = 133
	a, _ := f.cast(t, s, f.target)

	cds := f.m.Cooldowns(f.caster)
	if !cds.HasGlobal(133, f.m.Now()) {
		t.Fatalf("global cooldown not started")
	}
	a.Cancel(types.CastFailedInterrupted)
	if cds.HasGlobal(133, f.m.Now()) {
		t.Errorf("global cooldown kept after cancel while preparing")
	}
}

func TestAttempt_SpellCooldownStarted(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.RecoveryTimeMS = 8000
	f.cast(t, s, f.target)

	cds := f.m.Cooldowns(f.caster)
	if got := cds.SpellRemaining(s.ID, f.m.Now()); got != 8000 {
		t.Errorf("SpellRemaining = %d, want 8000", got)
	}
	if n := f.rec.Count(events.SpellCooldown); n != 1 {
		t.Errorf("spell_cooldown count = %d, want 1", n)
	}
}

func TestAttempt_PushbackCappedAtCastTime(t *testing.T) {
	f := newFixture()
	s := slowFireball()
	s.CastTimeMS = 2000
	s.InterruptFlags = types.InterruptPushBack
	a, _ := f.cast(t, s, f.target)
	a.Update(1000)

	a.Delayed()
	if a.Timer() != 1500 {
		t.Errorf("Timer after first pushback = %d, want 1500", a.Timer())
	}
	a.Delayed()
	a.Delayed()
	if a.Timer() != 2000 {
		t.Errorf("Timer after three pushbacks = %d, want 2000", a.Timer())
	}
}

func TestAttempt_PushbackResisted(t *testing.T) {
	f := newFixture()
	f.combat.resist = true
	s := slowFireball()
	s.InterruptFlags = types.InterruptPushBack
	a, _ := f.cast(t, s, f.target)
	a.Update(1000)
	a.Delayed()
	if a.Timer() != 500 {
		t.Errorf("Timer = %d, want 500", a.Timer())
	}
	if n := f.rec.Count(events.Pushback); n != 0 {
		t.Errorf("pushback count = %d, want 0", n)
	}
}

func TestAttempt_DamagePushesBackVictimCast(t *testing.T) {
	f := newFixture()
	s := slowFireball()
	s.CastTimeMS = 2000
	s.InterruptFlags = types.InterruptPushBack
	mine, _ := f.cast(t, s, f.target)
	mine.Update(1000)

	bite := f.attempt(t, f.target, fireball())
	snap := &targets.Snapshot{}
	snap.SetUnit(f.caster)
	if r := bite.Prepare(snap); r != types.CastOK {
		t.Fatalf("enemy Prepare = %v, want CastOK", r)
	}

	if f.caster.Health != 900 {
		t.Errorf("caster health = %d, want 900", f.caster.Health)
	}
	if mine.Timer() != 1500 {
		t.Errorf("Timer = %d, want 1500", mine.Timer())
	}
}

func TestAttempt_QueuedTriggerCastOnFinish(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.Effects[1] = types.EffectDef{Type: types.EffectTriggerSpell, TriggerSpell: 999}
	a, _ := f.cast(t, s, f.target)

	if a.State() != types.StateFinished {
		t.Fatalf("State = %v, want finished", a.State())
	}
	want := triggerCall{caster: f.caster.GUID, spell: 999, target: f.target.GUID}
	if len(f.triggered) != 1 || f.triggered[0] != want {
		t.Errorf("triggered = %v, want [%v]", f.triggered, want)
	}
}

func TestAttempt_CancelledCastDropsQueuedTriggers(t *testing.T) {
	f := newFixture()
	s := slowFireball()
	s.Effects[1] = types.EffectDef{Type: types.EffectTriggerSpell, TriggerSpell: 999}
	a, _ := f.cast(t, s, f.target)
	a.Cancel(types.CastFailedInterrupted)
	if len(f.triggered) != 0 {
		t.Errorf("triggered = %v, want none", f.triggered)
	}
}

func TestAttempt_LeechPaidOnFinish(t *testing.T) {
	f := newFixture()
	f.caster.Health = 500
	s := fireball()
	s.Effects[0] = types.EffectDef{Type: types.EffectHealthLeech, TargetA: types.TargetUnitEnemy, BasePoints: 50}
	f.cast(t, s, f.target)

	if f.caster.Health != 550 {
		t.Errorf("caster health = %d, want 550", f.caster.Health)
	}
	if f.target.Health != 450 {
		t.Errorf("target health = %d, want 450", f.target.Health)
	}
}

func TestAttempt_CreditsQuestTarget(t *testing.T) {
	f := newFixture()
	f.cast(t, fireball(), f.target)
	credit := f.rec.OfType(events.CreatureCredit)
	if len(credit) != 1 {
		t.Fatalf("creature_credit count = %d, want 1", len(credit))
	}
	if credit[0].Data["entry"] != f.target.Entry || credit[0].Data["player"] != f.caster.GUID {
		t.Errorf("creature_credit = %v", credit[0].Data)
	}
}
