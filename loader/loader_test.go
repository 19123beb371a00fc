package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/spellcore/types"
)

func TestLoad_MinimalWorld(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.World.Title != "Minimal Arena" {
		t.Errorf("Title = %q, want %q", defs.World.Title, "Minimal Arena")
	}
	if defs.World.TickMS != 100 {
		t.Errorf("TickMS = %d, want default 100", defs.World.TickMS)
	}
	s := defs.Spell(2136)
	if s == nil {
		t.Fatal("spell 2136 not found")
	}
	if s.Name != "Fire Blast" || s.School != types.SchoolFire {
		t.Errorf("spell = %q school %d, want Fire Blast fire", s.Name, s.School)
	}
	if len(defs.Units) != 1 || defs.Units[0].Kind != types.KindPlayer {
		t.Errorf("units = %+v, want one player", defs.Units)
	}
}

func TestLoad_FullWorld(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// World settings.
	w := defs.World
	if w.Author != "Tester" || w.Seed != 1234 || w.MapID != 1 {
		t.Errorf("world = %+v", w)
	}
	if w.TickMS != 50 {
		t.Errorf("TickMS = %d, want 50", w.TickMS)
	}
	if w.FakeDelayMS != 500 {
		t.Errorf("FakeDelayMS = %d, want default 500", w.FakeDelayMS)
	}
	if len(w.Walls) != 1 || w.Walls[0].A.X != 15 || w.Walls[0].B.Y != 5 {
		t.Errorf("walls = %+v", w.Walls)
	}
	if len(w.Water) != 1 || w.Water[0].Level != 2 {
		t.Errorf("water = %+v", w.Water)
	}

	// Spells.
	if len(defs.Spells) != 6 {
		t.Errorf("expected 6 spells, got %d", len(defs.Spells))
	}
	fb := defs.Spell(133)
	if fb.CastTimeMS != 3500 || fb.Speed != 20 {
		t.Errorf("fireball cast %d speed %v", fb.CastTimeMS, fb.Speed)
	}
	if fb.Range != (types.Range{Max: 35, Type: types.RangeRanged}) {
		t.Errorf("fireball range = %+v", fb.Range)
	}
	if fb.PowerType != types.PowerMana || fb.PowerCost != 30 {
		t.Errorf("fireball power = %d/%d", fb.PowerType, fb.PowerCost)
	}
	wantInterrupt := types.InterruptMovement | types.InterruptPushBack | types.InterruptDamage
	if fb.InterruptFlags != wantInterrupt {
		t.Errorf("InterruptFlags = %#x, want %#x", fb.InterruptFlags, wantInterrupt)
	}
	e1 := fb.Effects[1]
	if e1.Type != types.EffectApplyAura || e1.Aura != types.AuraPeriodicDamage || e1.AmplitudeMS != 2000 {
		t.Errorf("fireball effect 1 = %+v", e1)
	}
	if len(fb.TriggerChance) != 1 || fb.TriggerChance[0] != (types.ChanceTrigger{Spell: 12654, Chance: 25}) {
		t.Errorf("TriggerChance = %+v", fb.TriggerChance)
	}
	if len(fb.LinkedOnHit) != 1 || fb.LinkedOnHit[0] != 12654 {
		t.Errorf("fireball LinkedOnHit = %v, want [12654]", fb.LinkedOnHit)
	}
	if got := defs.Spell(7922).LinkedOnHit; len(got) != 1 || got[0] != -133 {
		t.Errorf("charge stun LinkedOnHit = %v, want [-133]", got)
	}

	bl := defs.Spell(10)
	if bl.Flags&types.AttrChanneled == 0 {
		t.Error("blizzard not channeled")
	}
	if bl.ChannelInterruptFlags != types.ChannelInterruptDamage|types.ChannelInterruptMovement {
		t.Errorf("ChannelInterruptFlags = %#x", bl.ChannelInterruptFlags)
	}
	if bl.Effects[0].Radius != 8 || bl.Effects[0].TargetA != types.TargetDynobjEnemy {
		t.Errorf("blizzard effect = %+v", bl.Effects[0])
	}

	if defs.Spell(7922).Effects[0].Polarity != -1 || defs.Spell(7922).Effects[0].Mechanic != types.MechanicStun {
		t.Errorf("charge stun effect = %+v", defs.Spell(7922).Effects[0])
	}
	hs := defs.Spell(8690)
	if hs.Disabled != types.DisableForCreature|types.DisableForPet {
		t.Errorf("Disabled = %#x", hs.Disabled)
	}
	if len(hs.Reagents) != 1 || hs.Reagents[0] != (types.Reagent{Item: 6948, Count: 1}) {
		t.Errorf("Reagents = %+v", hs.Reagents)
	}
	if defs.Spell(11).PreventionType != types.PreventionSilence {
		t.Errorf("PreventionType = %d", defs.Spell(11).PreventionType)
	}

	// Fixtures.
	if len(defs.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(defs.Units))
	}
	jaina := defs.Units[0]
	if jaina.Name != "Jaina" || jaina.Kind != types.KindPlayer {
		t.Errorf("first unit = %q kind %d", jaina.Name, jaina.Kind)
	}
	if jaina.MaxPower[types.PowerMana] != 5000 || jaina.Power[types.PowerMana] != 4200 {
		t.Errorf("jaina power = %v / %v", jaina.Power, jaina.MaxPower)
	}
	if jaina.Flags&types.UnitFlagPvP == 0 {
		t.Error("jaina not flagged pvp")
	}
	if jaina.ComboPoints != 3 {
		t.Errorf("jaina combo points = %d, want 3", jaina.ComboPoints)
	}
	if jaina.Items[6948] != 1 {
		t.Errorf("jaina items = %v", jaina.Items)
	}
	if len(jaina.Auras) != 1 || jaina.Auras[0].Caster != "Imp" || jaina.Auras[0].Type != types.AuraDummy {
		t.Errorf("jaina auras = %+v", jaina.Auras)
	}
	imp := defs.Units[1]
	if imp.Kind != types.KindCreature || imp.Owner != "Jaina" || imp.Health != 350 {
		t.Errorf("imp = %+v", imp)
	}

	if len(defs.GameObjects) != 1 || !defs.GameObjects[0].Spawned || defs.GameObjects[0].Type != types.GOTypeSpellFocus {
		t.Errorf("game objects = %+v", defs.GameObjects)
	}
	if len(defs.Items) != 2 || !defs.Items[1].Expendable || defs.Items[1].Class != types.ItemClassConsumable {
		t.Errorf("items = %+v", defs.Items)
	}
	if sts := defs.ScriptTargetsFor(11); len(sts) != 1 || sts[0].Entry != 416 {
		t.Errorf("script targets = %+v", sts)
	}
	tp, ok := defs.TeleportPositions[8690]
	if !ok || tp.MapID != 1 || tp.Pos != (types.Position{X: 100, Y: 200, Z: 5, O: 1.5}) {
		t.Errorf("teleport = %+v", tp)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load("testdata/nope")
	if err == nil || !strings.Contains(err.Error(), "reading world directory") {
		t.Errorf("error = %v, want a read error", err)
	}
}

func TestLoad_NoLuaFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("error = %v, want no .lua files", err)
	}
}

func TestLoad_UnknownName(t *testing.T) {
	_, err := Load("testdata/broken")
	if err == nil {
		t.Fatal("Load error = nil, want compile error")
	}
	if !strings.Contains(err.Error(), `unknown school "plasma"`) {
		t.Errorf("error = %v, want unknown school", err)
	}
}

func TestLoad_Sandboxed(t *testing.T) {
	if _, err := Load("testdata/sandbox"); err != nil {
		t.Errorf("Load failed: %v", err)
	}
}

func TestLoad_LuaError(t *testing.T) {
	dir := t.TempDir()
	src := "World { title = 'x' }\nSpell(0) { name = 'zero' }\n"
	if err := os.WriteFile(filepath.Join(dir, "world.lua"), []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "executing world.lua") {
		t.Errorf("error = %v, want an execution error", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	dir := t.TempDir()
	src := `World { title = "Bad", player = "Nobody" }
Unit "Wolf" { owner = "Ghost" }
`
	if err := os.WriteFile(filepath.Join(dir, "world.lua"), []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(dir)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("Errors = %v, want 2", ve.Errors)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"units.lua", "world.lua", "spells.lua"})
	want := []string{"world.lua", "spells.lua", "units.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sortedLuaFiles = %v, want %v", got, want)
	}
	got = sortedLuaFiles([]string{"b.lua", "a.lua"})
	if got[0] != "a.lua" {
		t.Errorf("sortedLuaFiles = %v, want a.lua first", got)
	}
}

func TestLoad_ShippedArena(t *testing.T) {
	defs, err := Load("../worlds/arena")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.World.Title != "Training Grounds" || defs.World.Player != "Jaina" {
		t.Errorf("world = %+v", defs.World)
	}
	if len(defs.Spells) != 7 {
		t.Errorf("expected 7 spells, got %d", len(defs.Spells))
	}
	if len(defs.Units) != 6 {
		t.Errorf("expected 6 units, got %d", len(defs.Units))
	}
	nova := defs.Spell(122)
	if nova == nil || nova.Effects[1].Mechanic != types.MechanicRoot {
		t.Errorf("frost nova = %+v", nova)
	}
	if cl := defs.Spell(421); cl == nil || cl.Effects[0].ChainTargets != 3 {
		t.Errorf("chain lightning = %+v", cl)
	}
}
