package save

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.World.Title = "Test Arena"
	defs.World.Version = "1.0"
	defs.World.Seed = 42
	defs.Spells[133] = &types.SpellDef{
		ID:         133,
		Name:       "Fireball",
		School:     types.SchoolFire,
		DmgClass:   types.DamageClassMagic,
		CastTimeMS: 1500,
		Range:      types.Range{Max: 30},
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetUnitEnemy, BasePoints: 100},
		},
	}
	defs.Units = []types.UnitDef{
		{Name: "Mage", Kind: types.KindPlayer, Team: 1, Level: 60, MaxHealth: 1000,
			MaxPower: map[types.PowerType]int{types.PowerMana: 1000}},
		{Name: "Wolf", Kind: types.KindCreature, Team: 2, Level: 60, MaxHealth: 500,
			Pos: types.Position{X: 10}},
	}
	defs.Items = []types.ItemDef{
		{Name: "Wand", Entry: 5000, Owner: "Mage", Charges: 3},
		{Name: "Scroll", Entry: 5001, Owner: "Mage", Charges: 1, Expendable: true},
	}
	return defs
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(testDefs())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func TestRoundTrip(t *testing.T) {
	e := newEngine(t)
	mage := e.Map.UnitByName("Mage")
	wolf := e.Map.UnitByName("Wolf")

	// Modify state.
	e.Tick(700)
	e.RNG.Intn(10)
	e.RNG.Intn(10)
	mage.Pos = types.Position{X: 1, Y: 2, Z: 3, O: 1.5}
	mage.Power[types.PowerMana] = 640
	mage.ComboPoints = 2
	mage.Cooldowns.AddSpell(133, 9000)
	wolf.Health = 120
	debuff := &world.Aura{
		SpellID:     133,
		Type:        types.AuraPeriodicDamage,
		CasterGUID:  mage.GUID,
		Amount:      25,
		DurationMS:  8000,
		RemainingMS: 4000,
	}
	wolf.AddAura(debuff)
	e.Map.ItemsOf(mage.GUID)[0].Charges = 1
	e.Map.ConsumeCharge(e.Map.ItemsOf(mage.GUID)[1])
	e.CommandLog = []string{"cast fireball on wolf", "tick 700"}

	// Save.
	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load.
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Apply to a fresh engine.
	e2 := newEngine(t)
	if err := ApplySave(e2, sd); err != nil {
		t.Fatalf("ApplySave failed: %v", err)
	}

	if e2.Now() != 700 {
		t.Errorf("Now = %d, want 700", e2.Now())
	}
	if e2.Session != e.Session {
		t.Errorf("Session = %v, want %v", e2.Session, e.Session)
	}
	if e2.RNG.Position() != e.RNG.Position() {
		t.Errorf("RNG position = %d, want %d", e2.RNG.Position(), e.RNG.Position())
	}
	if got, want := e2.RNG.Intn(1000), e.RNG.Intn(1000); got != want {
		t.Errorf("next draw = %d, want %d", got, want)
	}

	m2 := e2.Map.UnitByName("Mage")
	if m2.Pos != mage.Pos {
		t.Errorf("mage pos = %+v, want %+v", m2.Pos, mage.Pos)
	}
	if m2.Power[types.PowerMana] != 640 {
		t.Errorf("mage mana = %d, want 640", m2.Power[types.PowerMana])
	}
	if m2.ComboPoints != 2 {
		t.Errorf("mage combo points = %d, want 2", m2.ComboPoints)
	}
	if !m2.Cooldowns.HasSpell(133, 700) {
		t.Errorf("fireball cooldown lost")
	}
	if m2.Inventory[5001] != 0 || m2.Inventory[5000] != 1 {
		t.Errorf("inventory = %v, want only the wand", m2.Inventory)
	}

	w2 := e2.Map.UnitByName("Wolf")
	if w2.Health != 120 {
		t.Errorf("wolf health = %d, want 120", w2.Health)
	}
	a := w2.Aura(debuff.SpellID, 0, mage.GUID)
	if a == nil || a.RemainingMS != 4000 || a.Positive {
		t.Errorf("wolf aura = %+v, want the saved debuff", a)
	}

	items := e2.Map.ItemsOf(m2.GUID)
	if len(items) != 1 || items[0].Entry != 5000 || items[0].Charges != 1 {
		t.Errorf("items = %v, want the wand with 1 charge", items)
	}
	if len(e2.CommandLog) != 2 {
		t.Errorf("CommandLog = %v, want 2 entries", e2.CommandLog)
	}
}

func TestSave_ProducesValidJSON(t *testing.T) {
	e := newEngine(t)
	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"version", "world", "session", "clock_ms", "rng_seed", "rng_position", "units"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if raw["world"] != "Test Arena" {
		t.Errorf("world = %v, want Test Arena", raw["world"])
	}
}

func TestSave_DropsCastingFlags(t *testing.T) {
	e := newEngine(t)
	mage, wolf := e.Map.UnitByName("Mage"), e.Map.UnitByName("Wolf")
	res := e.Step("cast fireball on wolf")
	if !mage.HasFlag(types.UnitFlagCasting) {
		t.Fatalf("mage not casting after %v", res.Output)
	}

	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := ApplySave(e, sd); err != nil {
		t.Fatalf("ApplySave failed: %v", err)
	}

	if mage.HasFlag(types.UnitFlagCasting) {
		t.Errorf("mage still flagged casting after load")
	}
	if e.Queue.Len() != 0 {
		t.Errorf("queue = %v, want empty after load", e.Queue.Pending())
	}
	e.Tick(2000)
	if wolf.Health != 500 {
		t.Errorf("wolf health = %d, want 500 (cast was not restored)", wolf.Health)
	}
}

func TestLoad_MissingOptionalFields(t *testing.T) {
	data := []byte(`{"version":"1.0","world":"Test Arena","units":[{"guid":1,"name":"Mage","health":10}]}`)
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	u := sd.Units[0]
	if u.Inventory == nil {
		t.Error("Inventory is nil")
	}
	if u.Cooldowns == nil || u.Cooldowns.Spells == nil || u.Cooldowns.Global == nil {
		t.Error("Cooldowns not allocated")
	}
	if sd.CommandLog == nil {
		t.Error("CommandLog is nil")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load([]byte("{")); err == nil {
		t.Error("Load error = nil, want error")
	}
}

func TestApplySave_UnknownUnit(t *testing.T) {
	e := newEngine(t)
	sd := &SaveData{Units: []UnitState{{GUID: 99, Name: "Ghost"}}}
	err := ApplySave(e, sd)
	if err == nil || !strings.Contains(err.Error(), "Ghost #99") {
		t.Errorf("error = %v, want unknown unit error", err)
	}
	if e.Map.UnitByName("Mage").Health != 1000 {
		t.Errorf("state changed by a rejected save")
	}
}
