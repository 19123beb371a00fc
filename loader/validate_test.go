package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	defs := state.NewDefs()
	defs.World.Title = "Test"
	defs.World.Player = "Mage"
	defs.Spells[133] = &types.SpellDef{
		ID:   133,
		Name: "Fireball",
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetUnitEnemy, BasePoints: 10},
		},
	}
	defs.Units = []types.UnitDef{
		{Name: "Mage", Kind: types.KindPlayer, MaxHealth: 100},
		{Name: "Wolf", Kind: types.KindCreature, MaxHealth: 50},
	}
	return defs
}

// hasError reports whether any collected error contains substr.
func hasError(ve *ValidationError, substr string) bool {
	for _, e := range ve.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ValidDefs(t *testing.T) {
	if err := validate(validDefs()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_MissingTitle(t *testing.T) {
	defs := validDefs()
	defs.World.Title = ""
	ve := check(defs)
	if !hasError(ve, "World.title is required") {
		t.Errorf("Errors = %v, want missing title", ve.Errors)
	}
}

func TestValidate_UnknownPlayer(t *testing.T) {
	defs := validDefs()
	defs.World.Player = "Nobody"
	ve := check(defs)
	if !hasError(ve, `World.player references undefined unit "Nobody"`) {
		t.Errorf("Errors = %v, want undefined player", ve.Errors)
	}
}

func TestValidate_DuplicateUnitName(t *testing.T) {
	defs := validDefs()
	defs.Units = append(defs.Units, types.UnitDef{Name: "Wolf"})
	ve := check(defs)
	if !hasError(ve, `duplicate unit name "Wolf"`) {
		t.Errorf("Errors = %v, want duplicate name", ve.Errors)
	}
}

func TestValidate_UnitReferences(t *testing.T) {
	defs := validDefs()
	defs.Units[1].Owner = "Ghost"
	defs.Units[1].Charm = "Wolf"
	defs.Units[1].Auras = []types.AuraDef{{Spell: 133, Caster: "Shade", EffIndex: 5}}
	ve := check(defs)
	for _, want := range []string{
		`owner references undefined unit "Ghost"`,
		"charms itself",
		`aura caster references undefined unit "Shade"`,
		"eff_index 5 out of range",
	} {
		if !hasError(ve, want) {
			t.Errorf("Errors = %v, want %q", ve.Errors, want)
		}
	}
}

func TestValidate_HealthAndPower(t *testing.T) {
	defs := validDefs()
	defs.Units[0].Health = 500
	defs.Units[0].Power = map[types.PowerType]int{types.PowerMana: 10}
	ve := check(defs)
	if !hasError(ve, "health 500 exceeds max_health 100") {
		t.Errorf("Errors = %v, want health error", ve.Errors)
	}
	if !hasError(ve, "power 10 exceeds its maximum 0") {
		t.Errorf("Errors = %v, want power error", ve.Errors)
	}
}

func TestValidate_SpellReferences(t *testing.T) {
	defs := validDefs()
	s := defs.Spells[133]
	s.Effects[1] = types.EffectDef{Type: types.EffectTriggerSpell, TriggerSpell: 999}
	s.TriggerChance = []types.ChanceTrigger{{Spell: 998, Chance: 10}, {Spell: 133, Chance: 150}}
	s.LinkedOnHit = []int32{-997, 0}
	ve := check(defs)
	for _, want := range []string{
		"trigger_spell references undefined spell 999",
		"trigger references undefined spell 998",
		"trigger chance 150.0 out of range",
		"linked spell references undefined spell 997",
		"links spell 0",
	} {
		if !hasError(ve, want) {
			t.Errorf("Errors = %v, want %q", ve.Errors, want)
		}
	}
}

func TestValidate_SpellShape(t *testing.T) {
	defs := validDefs()
	defs.Spells[2] = &types.SpellDef{
		ID:           2,
		Flags:        types.AttrChanneled,
		Range:        types.Range{Min: 10, Max: 5},
		PowerCostPct: 120,
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectApplyAura},
		},
	}
	ve := check(defs)
	for _, want := range []string{
		"spell 2 has no name",
		"range min 10.0 exceeds max 5.0",
		"power_cost_pct 120 out of range",
		"channeled but has no duration",
		"applies an aura without an aura type",
	} {
		if !hasError(ve, want) {
			t.Errorf("Errors = %v, want %q", ve.Errors, want)
		}
	}
}

func TestValidate_Warnings(t *testing.T) {
	defs := validDefs()
	defs.Spells[3] = &types.SpellDef{ID: 3, Name: "Nothing"}
	defs.Units[0].Auras = []types.AuraDef{{Spell: 4242}}
	defs.Items = []types.ItemDef{{Name: "Rock", Entry: 1}}
	defs.GameObjects = []types.GameObjectDef{{Name: "Altar", Type: types.GOTypeSpellFocus}}

	ve := check(defs)
	if len(ve.Errors) != 0 {
		t.Errorf("Errors = %v, want none", ve.Errors)
	}
	if len(ve.Warnings) != 4 {
		t.Errorf("Warnings = %v, want 4", ve.Warnings)
	}
	if err := validate(defs); err != nil {
		t.Errorf("validate = %v, want nil with only warnings", err)
	}
}

func TestValidate_ItemsAndScripts(t *testing.T) {
	defs := validDefs()
	defs.Items = []types.ItemDef{{Name: "Wand", Owner: "Mage", Spell: 55}}
	defs.ScriptTargets = []types.ScriptTarget{{Spell: 0, Entry: 1}}
	defs.TeleportPositions[77] = types.TeleportPosition{Spell: 77}
	ve := check(defs)
	for _, want := range []string{
		`item "Wand" has no entry`,
		`item "Wand" references undefined spell 55`,
		"script target without a spell",
		"teleport position references undefined spell 77",
	} {
		if !hasError(ve, want) {
			t.Errorf("Errors = %v, want %q", ve.Errors, want)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "\n  b") {
		t.Errorf("Error() = %q", msg)
	}
}
