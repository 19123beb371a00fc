package engine

import (
	"testing"

	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

func duelists(casterLevel, targetLevel int) (*world.Unit, *world.Unit) {
	c := world.NewUnit(1, "mage", types.KindPlayer)
	c.Team, c.Level = 1, casterLevel
	c.Pos = types.Position{X: -5}
	t := world.NewUnit(2, "ogre", types.KindCreature)
	t.Team, t.Level = 2, targetLevel
	return c, t
}

func bolt() *types.SpellDef {
	return &types.SpellDef{
		ID:       116,
		Name:     "Frostbolt",
		School:   types.SchoolFrost,
		DmgClass: types.DamageClassMagic,
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetUnitEnemy, BasePoints: 10},
		},
	}
}

func strike() *types.SpellDef {
	s := bolt()
	s.ID, s.Name = 78, "Heroic Strike"
	s.School, s.DmgClass = types.SchoolPhysical, types.DamageClassMelee
	return s
}

func countMisses(h *HitTable, c, t *world.Unit, s *types.SpellDef, n int) map[types.SpellMissInfo]int {
	out := map[types.SpellMissInfo]int{}
	for i := 0; i < n; i++ {
		out[h.HitResult(c, t, s, true)]++
	}
	return out
}

func TestHitTable_CannotMissAlwaysHits(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	c, tgt := duelists(1, 60)
	for i := 0; i < 100; i++ {
		if got := h.HitResult(c, tgt, bolt(), false); got != types.MissNone {
			t.Fatalf("HitResult = %v, want MissNone", got)
		}
	}
	if h.rng.Position() != 0 {
		t.Errorf("Position = %d, want 0 draws", h.rng.Position())
	}
}

func TestHitTable_FriendlyPositiveSpellHits(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	c, tgt := duelists(60, 60)
	tgt.Team = 1
	heal := &types.SpellDef{
		ID:       2050,
		DmgClass: types.DamageClassMagic,
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectHeal, TargetA: types.TargetUnitFriend, BasePoints: 10},
		},
	}
	if got := h.HitResult(c, tgt, heal, true); got != types.MissNone {
		t.Errorf("HitResult = %v, want MissNone", got)
	}
}

func TestHitTable_SchoolImmunity(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	c, tgt := duelists(60, 60)
	tgt.AddAura(&world.Aura{SpellID: 642, Type: types.AuraSchoolImmunity, Amount: 1 << types.SchoolFrost})

	if got := h.HitResult(c, tgt, bolt(), true); got != types.MissImmune {
		t.Errorf("HitResult = %v, want MissImmune", got)
	}
}

func TestHitTable_MagicMissScalesWithLevel(t *testing.T) {
	h := NewHitTable(NewRNG(42))

	c, high := duelists(40, 60)
	got := countMisses(h, c, high, bolt(), 1000)
	if got[types.MissResist] < 950 {
		t.Errorf("resists against +20 = %d/1000, want >= 950", got[types.MissResist])
	}

	c, low := duelists(60, 40)
	got = countMisses(h, c, low, bolt(), 1000)
	if got[types.MissResist] > 50 {
		t.Errorf("resists against -20 = %d/1000, want <= 50", got[types.MissResist])
	}
	if got[types.MissDodge] != 0 || got[types.MissParry] != 0 {
		t.Errorf("magic rolled melee avoidance: %v", got)
	}
}

func TestHitTable_NoParryFromBehind(t *testing.T) {
	h := NewHitTable(NewRNG(7))
	c, tgt := duelists(60, 60)

	got := countMisses(h, c, tgt, strike(), 2000)
	if got[types.MissParry] != 0 {
		t.Errorf("parries from behind = %d, want 0", got[types.MissParry])
	}
	if got[types.MissDodge] == 0 {
		t.Errorf("dodges = 0, want some")
	}
}

func TestHitTable_ParryInFront(t *testing.T) {
	h := NewHitTable(NewRNG(7))
	c, tgt := duelists(60, 60)
	c.Pos = types.Position{X: 5}

	got := countMisses(h, c, tgt, strike(), 2000)
	if got[types.MissParry] < 30 {
		t.Errorf("parries in front = %d/2000, want >= 30", got[types.MissParry])
	}
}

func TestHitTable_ReflectConsumesCharge(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	c, tgt := duelists(60, 60)
	tgt.AddAura(&world.Aura{SpellID: 23920, Type: types.AuraReflectSpells, Amount: 100, Charges: 1})

	if got := h.ReflectResult(c, tgt, bolt()); got != types.MissReflect {
		t.Errorf("ReflectResult = %v, want MissReflect", got)
	}
	if tgt.HasAura(23920) {
		t.Errorf("reflect aura kept after its last charge")
	}
	if got := h.ReflectResult(c, tgt, bolt()); got != types.MissNone {
		t.Errorf("second ReflectResult = %v, want MissNone", got)
	}
}

func TestHitTable_ReflectIgnoresWeapons(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	c, tgt := duelists(60, 60)
	tgt.AddAura(&world.Aura{SpellID: 23920, Type: types.AuraReflectSpells, Amount: 100})

	if got := h.ReflectResult(c, tgt, strike()); got != types.MissNone {
		t.Errorf("ReflectResult = %v, want MissNone", got)
	}
}

func TestHitTable_ResistPushback(t *testing.T) {
	tests := []struct {
		name  string
		flat  int
		aura  int
		want  bool
		draws int64
	}{
		{"none", 0, 0, false, 0},
		{"full flat", 100, 0, true, 0},
		{"aura completes", 30, 70, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHitTable(NewRNG(1))
			c, _ := duelists(60, 60)
			c.ResistPushback = tt.flat
			if tt.aura > 0 {
				c.AddAura(&world.Aura{SpellID: 14743, Type: types.AuraResistPushback, Amount: tt.aura})
			}
			if got := h.ResistPushback(c); got != tt.want {
				t.Errorf("ResistPushback = %v, want %v", got, tt.want)
			}
			if h.rng.Position() != tt.draws {
				t.Errorf("Position = %d, want %d", h.rng.Position(), tt.draws)
			}
		})
	}
}

func TestHitTable_MechanicResistChance(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	_, tgt := duelists(60, 60)
	tgt.AddAura(&world.Aura{SpellID: 1, Type: types.AuraAddPctModifier, Amount: 60, Mechanic: types.MechanicStun})
	tgt.AddAura(&world.Aura{SpellID: 2, Type: types.AuraAddPctModifier, Amount: 60, Mechanic: types.MechanicStun})
	tgt.AddAura(&world.Aura{SpellID: 3, Type: types.AuraAddPctModifier, Amount: 25, Mechanic: types.MechanicFear})

	if got := h.MechanicResistChance(tgt, types.MechanicStun); got != 100 {
		t.Errorf("stun resist = %d, want 100", got)
	}
	if got := h.MechanicResistChance(tgt, types.MechanicFear); got != 25 {
		t.Errorf("fear resist = %d, want 25", got)
	}
	if got := h.MechanicResistChance(tgt, types.MechanicNone); got != 0 {
		t.Errorf("none resist = %d, want 0", got)
	}
}

func TestHitTable_CritChanceByClass(t *testing.T) {
	h := NewHitTable(NewRNG(1))
	h.SpellCrit, h.MeleeCrit = 7, 12
	c, _ := duelists(60, 60)

	if got := h.CritChance(c, bolt()); got != 7 {
		t.Errorf("spell crit = %v, want 7", got)
	}
	if got := h.CritChance(c, strike()); got != 12 {
		t.Errorf("melee crit = %v, want 12", got)
	}
	none := bolt()
	none.DmgClass = types.DamageClassNone
	if got := h.CritChance(c, none); got != 0 {
		t.Errorf("none crit = %v, want 0", got)
	}
}
