package engine

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/spell"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// sureHit never misses, crits or resists.
type sureHit struct{}

func (sureHit) HitResult(*world.Unit, *world.Unit, *types.SpellDef, bool) types.SpellMissInfo {
	return types.MissNone
}
func (sureHit) ReflectResult(*world.Unit, *world.Unit, *types.SpellDef) types.SpellMissInfo {
	return types.MissNone
}
func (sureHit) CritChance(*world.Unit, *types.SpellDef) float64       { return 0 }
func (sureHit) ResistPushback(*world.Unit) bool                      { return false }
func (sureHit) MechanicResistChance(*world.Unit, types.Mechanic) int { return 0 }

func damageSpell(id uint32, name string) *types.SpellDef {
	return &types.SpellDef{
		ID:       id,
		Name:     name,
		School:   types.SchoolFire,
		DmgClass: types.DamageClassMagic,
		Level:    1,
		Range:    types.Range{Max: 30},
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetUnitEnemy, BasePoints: 100},
		},
	}
}

// testDefs builds a small arena: a mage facing a wolf 10 yd away and a
// bear 20 yd away, with an instant, a cast-time and a missile spell.
func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.World.Title = "Test Arena"
	defs.World.Seed = 42
	defs.World.Player = "Mage"

	slow := damageSpell(133, "Fireball")
	slow.CastTimeMS = 1500
	missile := damageSpell(116, "Frostbolt")
	missile.School = types.SchoolFrost
	missile.Speed = 10
	for _, s := range []*types.SpellDef{
		damageSpell(2136, "Fire Blast"),
		slow,
		missile,
	} {
		defs.Spells[s.ID] = s
	}

	defs.Units = []types.UnitDef{
		{
			Name: "Mage", Kind: types.KindPlayer, Team: 1, Level: 60, MaxHealth: 1000,
			MaxPower: map[types.PowerType]int{types.PowerMana: 1000},
		},
		{
			Name: "Wolf", Kind: types.KindCreature, Entry: 500, Team: 2, Level: 60, MaxHealth: 500,
			Pos: types.Position{X: 10},
		},
		{
			Name: "Bear", Kind: types.KindCreature, Entry: 501, Team: 2, Level: 60, MaxHealth: 1000,
			Pos: types.Position{X: 20},
			Auras: []types.AuraDef{{Spell: 9999, Type: types.AuraDummy, DurationMS: 300}},
		},
	}
	return defs
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testDefs(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.SetCombat(sureHit{})
	return e
}

func (e *Engine) mustUnit(t *testing.T, name string) *world.Unit {
	t.Helper()
	u := e.Map.UnitByName(name)
	if u == nil {
		t.Fatalf("no unit %q", name)
	}
	return u
}

func aimAt(u *world.Unit) *targets.Snapshot {
	snap := &targets.Snapshot{}
	snap.SetUnit(u)
	return snap
}

func TestNew_SpawnsWorld(t *testing.T) {
	e := newTestEngine(t)
	if n := len(e.Map.Units()); n != 3 {
		t.Fatalf("units = %d, want 3", n)
	}
	mage := e.mustUnit(t, "Mage")
	if e.Player != mage.GUID {
		t.Errorf("Player = %d, want %d", e.Player, mage.GUID)
	}
	if mage.Power[types.PowerMana] != 1000 {
		t.Errorf("mage mana = %d, want 1000", mage.Power[types.PowerMana])
	}
	if e.Session.String() == "" {
		t.Errorf("session id not set")
	}
}

func TestNew_NilDefs(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Errorf("New(nil) error = nil, want error")
	}
}

func TestNew_UnknownOwner(t *testing.T) {
	defs := testDefs()
	defs.Units[1].Owner = "Nobody"
	if _, err := New(defs); err == nil {
		t.Errorf("New error = nil, want unknown unit error")
	}
}

func TestEngine_SetCombatNilRestoresHitTable(t *testing.T) {
	e := newTestEngine(t)
	if _, ok := e.Combat().(sureHit); !ok {
		t.Fatalf("Combat = %T, want sureHit", e.Combat())
	}
	e.SetCombat(nil)
	if e.Combat() != e.HitTable() {
		t.Errorf("Combat = %T, want the built-in hit table", e.Combat())
	}
}

func TestCast_InstantFinishesAndFreesSlot(t *testing.T) {
	e := newTestEngine(t)
	mage, wolf := e.mustUnit(t, "Mage"), e.mustUnit(t, "Wolf")

	a, r := e.Cast(mage, 2136, aimAt(wolf))
	if r != types.CastOK {
		t.Fatalf("Cast = %v, want CastOK", r)
	}
	if !a.IsFinished() {
		t.Errorf("State = %v, want finished", a.State())
	}
	if wolf.Health != 400 {
		t.Errorf("wolf health = %d, want 400", wolf.Health)
	}
	if got := e.Slots.Active(mage.GUID); len(got) != 0 {
		t.Errorf("active slots = %d, want 0", len(got))
	}
	if e.Queue.Len() != 0 {
		t.Errorf("queue = %v, want empty", e.Queue.Pending())
	}
}

func TestCast_UnknownSpell(t *testing.T) {
	e := newTestEngine(t)
	a, r := e.Cast(e.mustUnit(t, "Mage"), 4242, nil)
	if a != nil || r != types.CastFailedError {
		t.Errorf("Cast = (%v, %v), want (nil, CastFailedError)", a, r)
	}
}

func TestCast_CastTimeCompletesOnTick(t *testing.T) {
	e := newTestEngine(t)
	mage, wolf := e.mustUnit(t, "Mage"), e.mustUnit(t, "Wolf")

	a, r := e.Cast(mage, 133, aimAt(wolf))
	if r != types.CastOK {
		t.Fatalf("Cast = %v, want CastOK", r)
	}
	if e.Queue.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", e.Queue.Len())
	}

	e.Tick(1000)
	if a.State() != types.StatePreparing {
		t.Errorf("State after 1000 ms = %v, want preparing", a.State())
	}
	if wolf.Health != 500 {
		t.Errorf("wolf hit before the cast completed")
	}

	e.Tick(500)
	if !a.IsFinished() {
		t.Errorf("State after 1500 ms = %v, want finished", a.State())
	}
	if wolf.Health != 400 {
		t.Errorf("wolf health = %d, want 400", wolf.Health)
	}

	e.Tick(100)
	if e.Queue.Len() != 0 {
		t.Errorf("queue = %v, want empty", e.Queue.Pending())
	}
	if e.Slots.Get(mage.GUID, types.SlotGeneric) != nil {
		t.Errorf("generic slot still held after finish")
	}
}

func TestCast_MissileLandsOnArrival(t *testing.T) {
	e := newTestEngine(t)
	mage, bear := e.mustUnit(t, "Mage"), e.mustUnit(t, "Bear")

	a, _ := e.Cast(mage, 116, aimAt(bear))
	if a.State() != types.StateDelayed {
		t.Fatalf("State = %v, want delayed", a.State())
	}
	if a.DelayMoment() != 2000 {
		t.Errorf("DelayMoment = %d, want 2000", a.DelayMoment())
	}

	e.Tick(1900)
	if bear.Health != 1000 {
		t.Errorf("bear hit at %d ms, before arrival", e.Now())
	}
	e.Tick(100)
	if bear.Health != 900 {
		t.Errorf("bear health = %d, want 900", bear.Health)
	}
	if !a.IsFinished() {
		t.Errorf("State = %v, want finished", a.State())
	}
	if e.Slots.Get(mage.GUID, types.SlotGeneric) != nil {
		t.Errorf("generic slot still held after the missile landed")
	}
}

func TestCast_MissileInFlightDoesNotBlockNextCast(t *testing.T) {
	e := newTestEngine(t)
	mage, wolf, bear := e.mustUnit(t, "Mage"), e.mustUnit(t, "Wolf"), e.mustUnit(t, "Bear")

	bolt, _ := e.Cast(mage, 116, aimAt(bear))
	e.Tick(1500)
	if _, r := e.Cast(mage, 133, aimAt(wolf), spell.Explicit()); r != types.CastOK {
		t.Fatalf("second Cast = %v, want CastOK", r)
	}
	if bolt.State() != types.StateDelayed {
		t.Errorf("missile State = %v, want delayed", bolt.State())
	}
	e.Tick(500)
	if bear.Health != 900 {
		t.Errorf("bear health = %d, want 900", bear.Health)
	}
}

func TestCancel_StopsPreparingCast(t *testing.T) {
	e := newTestEngine(t)
	mage, wolf := e.mustUnit(t, "Mage"), e.mustUnit(t, "Wolf")

	a, _ := e.Cast(mage, 133, aimAt(wolf))
	e.Tick(500)
	e.Drain()

	if !e.Cancel(mage, types.SlotGeneric) {
		t.Fatalf("Cancel = false, want true")
	}
	if !a.IsFinished() {
		t.Errorf("State = %v, want finished", a.State())
	}
	evs := e.Drain()
	found := false
	for _, ev := range evs {
		if ev.Type == events.Interrupted {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, want an interrupted notification", evs)
	}

	e.Tick(2000)
	if wolf.Health != 500 {
		t.Errorf("wolf health = %d, want 500", wolf.Health)
	}
	if e.Queue.Len() != 0 {
		t.Errorf("queue = %v, want empty", e.Queue.Pending())
	}
	if e.Cancel(mage, types.SlotGeneric) {
		t.Errorf("second Cancel = true, want false")
	}
}

func TestTriggered_ChainIsBounded(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newTestEngine(t, WithLogger(zap.New(core)))
	mage := e.mustUnit(t, "Mage")
	bear := e.mustUnit(t, "Bear")

	s := damageSpell(7, "Echo")
	s.Effects[0].BasePoints = 10
	s.Effects[1] = types.EffectDef{Type: types.EffectTriggerSpell, TriggerSpell: 7}
	e.Defs.Spells[s.ID] = s

	e.Cast(mage, 7, aimAt(bear))

	// one explicit cast plus maxTriggerDepth triggered ones
	if want := 1000 - 10*(maxTriggerDepth+1); bear.Health != want {
		t.Errorf("bear health = %d, want %d", bear.Health, want)
	}
	if n := logs.FilterMessage("trigger chain too deep").Len(); n != 1 {
		t.Errorf("depth warnings = %d, want 1", n)
	}
}

func TestTick_ExpiresAuras(t *testing.T) {
	e := newTestEngine(t)
	bear := e.mustUnit(t, "Bear")

	e.Tick(200)
	if !bear.HasAura(9999) {
		t.Fatalf("aura expired early")
	}
	e.Drain()
	e.Tick(100)
	if bear.HasAura(9999) {
		t.Errorf("aura still present after its duration")
	}
	evs := e.Drain()
	if len(evs) != 1 || evs[0].Type != events.AuraRemoved || evs[0].Data["reason"] != "expired" {
		t.Errorf("events = %v, want one expired aura_removed", evs)
	}
}

func TestTick_StepsByWorldTick(t *testing.T) {
	e := newTestEngine(t)
	runs := 0
	if err := e.Queue.Schedule(0, "probe", func(int64) int64 {
		runs++
		return 1
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	e.Tick(350)
	if e.Now() != 350 {
		t.Errorf("Now = %d, want 350", e.Now())
	}
	if runs != 4 {
		t.Errorf("runs = %d, want 4 (one per tick step)", runs)
	}
}

func TestRestoreRNG_KeepsPointer(t *testing.T) {
	e := newTestEngine(t)
	rng := e.RNG
	e.RestoreRNG(42, 7)
	if e.RNG != rng {
		t.Errorf("RestoreRNG replaced the RNG pointer")
	}
	if e.RNG.Position() != 7 {
		t.Errorf("Position = %d, want 7", e.RNG.Position())
	}

	fresh := NewRNG(42)
	for i := 0; i < 7; i++ {
		fresh.Intn(100)
	}
	if got, want := e.RNG.Intn(1000), fresh.Intn(1000); got != want {
		t.Errorf("next draw = %d, want %d", got, want)
	}
}

func TestStep_Empty(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("   ")
	if len(res.Output) != 1 || res.Output[0] != "What do you want to do?" {
		t.Errorf("Output = %v", res.Output)
	}
	if len(e.CommandLog) != 1 {
		t.Errorf("CommandLog = %v, want one entry", e.CommandLog)
	}
}

func TestStep_UnknownVerb(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("dance")
	if len(res.Output) != 1 || !strings.Contains(res.Output[0], "dance") {
		t.Errorf("Output = %v", res.Output)
	}
}

func TestStep_CastInstant(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("cast fire blast on wolf")

	if len(res.Output) == 0 || res.Output[0] != "Mage casts Fire Blast." {
		t.Fatalf("Output = %v", res.Output)
	}
	if e.mustUnit(t, "Wolf").Health != 400 {
		t.Errorf("wolf health = %d, want 400", e.mustUnit(t, "Wolf").Health)
	}
	var gos int
	for _, ev := range res.Events {
		if ev.Type == events.SpellGo {
			gos++
		}
	}
	if gos != 1 {
		t.Errorf("spell_go events = %d, want 1", gos)
	}
	if len(res.Output) != 1+len(res.Events) {
		t.Errorf("Output has %d lines for %d events", len(res.Output), len(res.Events))
	}
}

func TestStep_CastTimeThenTick(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("cast fireball on wolf")
	if !strings.HasPrefix(res.Output[0], "Mage begins casting Fireball (1500 ms)") {
		t.Fatalf("Output = %v", res.Output)
	}
	res = e.Step("tick 1500")
	if res.Output[0] != "Time passes. (t=1500 ms)" {
		t.Errorf("Output[0] = %q", res.Output[0])
	}
	if e.mustUnit(t, "Wolf").Health != 400 {
		t.Errorf("wolf health = %d, want 400", e.mustUnit(t, "Wolf").Health)
	}
}

func TestStep_CastErrors(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		input string
		want  string
	}{
		{"cast", "Cast what?"},
		{"cast pyroblast on wolf", `no spell named "pyroblast"`},
		{"cast fireball on dragon", `no unit named "dragon"`},
		{"cast fireball at 1", "expected x y [z], got 1 numbers"},
	}
	for _, tt := range tests {
		res := e.Step(tt.input)
		if len(res.Output) == 0 || res.Output[0] != tt.want {
			t.Errorf("Step(%q).Output = %v, want %q", tt.input, res.Output, tt.want)
		}
	}
}

func TestStep_AsActor(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("as wolf cast fire blast on mage")
	if res.Output[0] != "Wolf casts Fire Blast." {
		t.Errorf("Output[0] = %q", res.Output[0])
	}
	if e.mustUnit(t, "Mage").Health != 900 {
		t.Errorf("mage health = %d, want 900", e.mustUnit(t, "Mage").Health)
	}
}

func TestStep_Cancel(t *testing.T) {
	e := newTestEngine(t)
	if res := e.Step("cancel"); res.Output[0] != "Mage is not casting anything." {
		t.Errorf("idle cancel Output[0] = %q", res.Output[0])
	}
	e.Step("cast fireball on wolf")
	if res := e.Step("cancel bogus"); res.Output[0] != `Unknown slot "bogus".` {
		t.Errorf("bad slot Output[0] = %q", res.Output[0])
	}
	if res := e.Step("stop generic"); res.Output[0] != "Mage stops casting." {
		t.Errorf("cancel Output[0] = %q", res.Output[0])
	}
	e.Step("tick 2000")
	if e.mustUnit(t, "Wolf").Health != 500 {
		t.Errorf("wolf health = %d, want 500", e.mustUnit(t, "Wolf").Health)
	}
}

func TestStep_Move(t *testing.T) {
	e := newTestEngine(t)
	res := e.Step("move wolf 3 4")
	if res.Output[0] != "Wolf moves to (3.0, 4.0, 0.0)." {
		t.Errorf("Output[0] = %q", res.Output[0])
	}
	if p := e.mustUnit(t, "Wolf").Pos; p.X != 3 || p.Y != 4 {
		t.Errorf("wolf pos = %+v, want (3, 4)", p)
	}
	if res := e.Step("move wolf"); !strings.Contains(res.Output[0], "expected x y") {
		t.Errorf("Output[0] = %q", res.Output[0])
	}
}

func TestStep_LookStatusSpells(t *testing.T) {
	e := newTestEngine(t)

	look := e.Step("look").Output
	if len(look) != 3 || !strings.HasPrefix(look[0], "* #1 Mage") {
		t.Errorf("look = %v", look)
	}

	status := e.Step("status bear").Output
	if len(status) < 2 || !strings.HasPrefix(status[0], "Bear #3") || !strings.Contains(status[1], "aura: 9999 (300 ms left)") {
		t.Errorf("status = %v", status)
	}

	mine := e.Step("status").Output
	if !strings.Contains(strings.Join(mine, "\n"), "power: mana 1000/1000") {
		t.Errorf("own status = %v", mine)
	}

	spells := e.Step("spells").Output
	want := []string{"#116 Frostbolt", "#133 Fireball (1500 ms)", "#2136 Fire Blast"}
	if strings.Join(spells, "|") != strings.Join(want, "|") {
		t.Errorf("spells = %v, want %v", spells, want)
	}
}
