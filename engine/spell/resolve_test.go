package spell

import (
	"testing"

	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

func liveCount(a *Attempt) int {
	n := 0
	for _, t := range a.Units() {
		if !t.Deleted {
			n++
		}
	}
	return n
}

func areaBlast() *types.SpellDef {
	return &types.SpellDef{
		ID:       2120,
		Name:     "Flamestrike",
		School:   types.SchoolFire,
		DmgClass: types.DamageClassMagic,
		Range:    types.Range{Max: 30},
		Effects: [types.MaxEffectIndex]types.EffectDef{
			{Type: types.EffectSchoolDamage, TargetA: types.TargetEnemyAoeDst, Radius: 20, BasePoints: 50},
		},
	}
}

func (f *fixture) castAt(t *testing.T, s *types.SpellDef, dst types.Position) *Attempt {
	t.Helper()
	a := f.attempt(t, f.caster, s)
	snap := &targets.Snapshot{}
	snap.SetDst(dst, f.m.ID)
	if r := a.Prepare(snap); r != types.CastOK {
		t.Fatalf("Prepare = %v, want CastOK", r)
	}
	return a
}

func TestResolve_SameUnitMergesEffectMask(t *testing.T) {
	f := newFixture()
	s := fireball()
	s.Effects[1] = types.EffectDef{Type: types.EffectApplyAura, TargetA: types.TargetUnitEnemy, Aura: types.AuraPeriodicDamage, BasePoints: 5}
	a, _ := f.cast(t, s, f.target)

	if len(a.Units()) != 1 {
		t.Fatalf("records = %d, want 1", len(a.Units()))
	}
	if m := a.Units()[0].EffectMask; m != 0b011 {
		t.Errorf("EffectMask = %03b, want 011", m)
	}
	if !f.target.HasAura(s.ID) {
		t.Errorf("aura from the second effect not applied")
	}
}

func TestResolve_HitsAndMissesCoverEveryRecord(t *testing.T) {
	f := newFixture()
	f.enemy(3, "bear", 12, 2)
	dodger := f.enemy(4, "cat", 12, -2)
	f.combat.miss[dodger.GUID] = types.MissDodge

	a := f.castAt(t, areaBlast(), types.Position{X: 10})

	if got := liveCount(a); got != 3 {
		t.Fatalf("records = %d, want 3", got)
	}
	if a.Hits() != 2 || a.Misses() != 1 {
		t.Errorf("hits, misses = %d, %d, want 2, 1", a.Hits(), a.Misses())
	}
	if a.Hits()+a.Misses() != liveCount(a) {
		t.Errorf("hits + misses = %d, want %d", a.Hits()+a.Misses(), liveCount(a))
	}
	if dodger.Health != 500 {
		t.Errorf("dodger health = %d, want 500", dodger.Health)
	}
	miss := f.rec.OfType(events.SpellMiss)
	if len(miss) != 1 || miss[0].Data["target"] != dodger.GUID {
		t.Errorf("spell_miss = %v, want one for the dodger", miss)
	}
}

func TestResolve_ReflectCountsAsMissAndHitsCaster(t *testing.T) {
	f := newFixture()
	f.combat.reflect[f.target.GUID] = types.MissReflect
	a, _ := f.cast(t, fireball(), f.target)

	rec := a.UnitTarget(f.target.GUID)
	if rec == nil || rec.Miss != types.MissReflect {
		t.Fatalf("record = %+v, want reflected", rec)
	}
	if a.Hits() != 0 || a.Misses() != 1 {
		t.Errorf("hits, misses = %d, %d, want 0, 1", a.Hits(), a.Misses())
	}
	if f.target.Health != 500 {
		t.Errorf("target health = %d, want 500", f.target.Health)
	}
	if f.caster.Health != 900 {
		t.Errorf("caster health = %d, want 900", f.caster.Health)
	}
}

func TestResolve_ReflectBackCanMiss(t *testing.T) {
	f := newFixture()
	f.combat.reflect[f.target.GUID] = types.MissReflect
	f.combat.back = types.MissResist
	f.cast(t, fireball(), f.target)
	if f.caster.Health != 1000 {
		t.Errorf("caster health = %d, want 1000", f.caster.Health)
	}
}

func TestResolve_ForceHitSkipsMissButNotImmune(t *testing.T) {
	f := newFixture()
	other := f.enemy(3, "bear", 12, 0)
	f.combat.miss[f.target.GUID] = types.MissDodge
	f.combat.miss[other.GUID] = types.MissImmune
	s := fireball()
	s.Effects[0].ChainTargets = 2

	a, _ := f.cast(t, s, f.target, ForceHit())
	if rec := a.UnitTarget(f.target.GUID); rec == nil || rec.Miss != types.MissNone {
		t.Errorf("target record = %+v, want hit", rec)
	}
	if rec := a.UnitTarget(other.GUID); rec == nil || rec.Miss != types.MissImmune {
		t.Errorf("immune record = %+v, want immune", rec)
	}
}

func TestResolve_ChainFollowsJumps(t *testing.T) {
	f := newFixture()
	f.enemy(3, "bear", 18, 0)
	f.enemy(4, "boar", 26, 0)
	f.enemy(5, "crab", 34, 0)
	s := fireball()
	s.Effects[0].ChainTargets = 3

	a, _ := f.cast(t, s, f.target)

	var got []types.GUID
	for _, r := range a.Units() {
		got = append(got, r.GUID)
	}
	want := []types.GUID{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("chain = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestResolve_ChainStopsAtGap(t *testing.T) {
	f := newFixture()
	f.enemy(3, "bear", 18, 0)
	f.enemy(4, "boar", 40, 0)
	s := fireball()
	s.Effects[0].ChainTargets = 5

	a, _ := f.cast(t, s, f.target)
	if got := liveCount(a); got != 2 {
		t.Errorf("chain length = %d, want 2", got)
	}
	if a.UnitTarget(4) != nil {
		t.Errorf("chain jumped past the gap")
	}
}

func TestResolve_MaxAffectedTargets(t *testing.T) {
	f := newFixture()
	for i := 0; i < 6; i++ {
		f.enemy(types.GUID(3+i), "rat", 10, float64(i+1))
	}
	s := areaBlast()
	s.MaxAffectedTargets = 3

	a := f.castAt(t, s, types.Position{X: 10})

	if got := liveCount(a); got != 3 {
		t.Fatalf("records = %d, want 3", got)
	}
	seen := map[types.GUID]bool{}
	for _, r := range a.Units() {
		if seen[r.GUID] {
			t.Errorf("unit %d recorded twice", r.GUID)
		}
		seen[r.GUID] = true
	}
}

func TestResolve_MagnetTakesTheSpell(t *testing.T) {
	f := newFixture()
	totem := f.enemy(5, "grounding totem", 12, 0)
	totem.Health, totem.MaxHealth = 5, 5
	totem.SetFlag(types.UnitFlagTotem)
	magnet := &world.Aura{SpellID: 8178, Type: types.AuraSpellMagnet, CasterGUID: totem.GUID, Charges: 1, DurationMS: 10000, RemainingMS: 10000}
	f.target.AddAura(magnet)

	a, _ := f.cast(t, fireball(), f.target)

	if a.UnitTarget(f.target.GUID) != nil {
		t.Errorf("original target still recorded")
	}
	if a.UnitTarget(totem.GUID) == nil {
		t.Fatalf("magnet not recorded")
	}
	if a.Targets.UnitGUID() != totem.GUID {
		t.Errorf("snapshot unit = %d, want magnet", a.Targets.UnitGUID())
	}
	if magnet.Charges != 0 {
		t.Errorf("magnet charges = %d, want 0", magnet.Charges)
	}
	if f.target.Health != 500 || totem.IsAlive() {
		t.Errorf("target health = %d, magnet alive = %v", f.target.Health, totem.IsAlive())
	}
}

func TestResolve_SpentMagnetIgnored(t *testing.T) {
	f := newFixture()
	totem := f.enemy(5, "grounding totem", 12, 0)
	f.target.AddAura(&world.Aura{SpellID: 8178, Type: types.AuraSpellMagnet, CasterGUID: totem.GUID})

	a, _ := f.cast(t, fireball(), f.target)
	if a.UnitTarget(f.target.GUID) == nil {
		t.Errorf("target not recorded with a spent magnet")
	}
}

func TestResolve_HitTriggerRedirectsMelee(t *testing.T) {
	tests := []struct {
		name      string
		charges   int
		wantAura  bool
		wantAfter int
	}{
		{"last charge removes the aura", 1, false, 0},
		{"chargeless aura keeps redirecting", 0, true, 0},
		{"charges count down", 3, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			guard := f.enemy(5, "warrior", 11, 0)
			hit := &world.Aura{SpellID: 3411, Type: types.AuraAddCasterHitTrigger, CasterGUID: guard.GUID, Charges: tt.charges, DurationMS: 10000, RemainingMS: 10000}
			f.target.AddAura(hit)

			s := fireball()
			s.DmgClass = types.DamageClassMelee
			a, _ := f.cast(t, s, f.target)

			if a.UnitTarget(guard.GUID) == nil {
				t.Fatalf("guard not recorded")
			}
			if a.UnitTarget(f.target.GUID) != nil {
				t.Errorf("original target still recorded")
			}
			if got := f.target.HasAura(3411); got != tt.wantAura {
				t.Errorf("aura present = %v, want %v", got, tt.wantAura)
			}
			if hit.Charges != tt.wantAfter {
				t.Errorf("charges = %d, want %d", hit.Charges, tt.wantAfter)
			}
		})
	}
}

func TestResolve_Sanctuary(t *testing.T) {
	tests := []struct {
		name  string
		id    uint32
		wantN int
	}{
		{"hostile spell blocked", 133, 0},
		{"allowed spell", 8326, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := f.m.AddUnit(world.NewUnit(9, "rogue", types.KindPlayer))
			p.Team = 2
			p.Level = 60
			p.Health, p.MaxHealth = 500, 500
			p.Pos = types.Position{X: 10, Y: 5}
			p.SetFlag(types.UnitFlagSanctuary)

			s := fireball()
			s.ID = tt.id
			a, _ := f.cast(t, s, p)
			if got := liveCount(a); got != tt.wantN {
				t.Errorf("records = %d, want %d", got, tt.wantN)
			}
		})
	}
}

func TestResolve_RepeatResolutionSoftDeletes(t *testing.T) {
	f := newFixture()
	a := f.attempt(t, f.caster, fireball())
	a.Targets.SetUnit(f.target)

	a.ResolveTargets()
	a.ResolveTargets()

	if len(a.Units()) != 2 {
		t.Fatalf("records = %d, want 2", len(a.Units()))
	}
	if !a.Units()[0].Deleted || a.Units()[1].Deleted {
		t.Errorf("deleted flags = %v, %v, want true, false", a.Units()[0].Deleted, a.Units()[1].Deleted)
	}
	if a.Hits() != 1 {
		t.Errorf("Hits = %d, want 1", a.Hits())
	}
}

func TestResolve_InterruptEffectCancelsTargetCast(t *testing.T) {
	f := newFixture()
	theirs := f.attempt(t, f.target, slowFireball())
	snap := &targets.Snapshot{}
	snap.SetUnit(f.caster)
	theirs.Prepare(snap)

	s := fireball()
	s.Effects[0] = types.EffectDef{Type: types.EffectInterruptCast, TargetA: types.TargetUnitEnemy}
	f.cast(t, s, f.target)

	if theirs.State() != types.StateFinished {
		t.Errorf("target cast State = %v, want finished", theirs.State())
	}
}

func TestResolve_LinkedOnHitRemovesAura(t *testing.T) {
	f := newFixture()
	f.target.AddAura(&world.Aura{SpellID: 77, DurationMS: 5000, RemainingMS: 5000})
	s := fireball()
	s.LinkedOnHit = []int32{-77, 88}

	f.cast(t, s, f.target)

	if f.target.HasAura(77) {
		t.Errorf("linked aura 77 not removed")
	}
	want := triggerCall{caster: f.target.GUID, spell: 88, target: f.target.GUID, orig: f.caster.GUID}
	if len(f.triggered) != 1 || f.triggered[0] != want {
		t.Errorf("triggered = %v, want [%v]", f.triggered, want)
	}
}

func TestResolve_CritScalesDamage(t *testing.T) {
	f := newFixture()
	f.combat.crit = 100
	f.cast(t, fireball(), f.target)
	dmg := f.rec.OfType(events.SpellDamage)
	if len(dmg) != 1 || dmg[0].Data["amount"] != 150 || dmg[0].Data["crit"] != true {
		t.Errorf("spell_damage = %v, want a 150 crit", dmg)
	}
}

func TestResolve_ChainHealStopsAtSanctuaryFactionSplit(t *testing.T) {
	tests := []struct {
		name      string
		sanctuary bool
		wantN     int
	}{
		{"open ground", false, 3},
		{"charmed link in sanctuary", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ally := func(g types.GUID, name string, x float64, hp int) *world.Unit {
				u := f.m.AddUnit(world.NewUnit(g, name, types.KindPlayer))
				u.Team = 1
				u.Level = 60
				u.Health, u.MaxHealth = hp, 1000
				u.Pos = types.Position{X: x}
				return u
			}
			main := ally(10, "priest", 5, 900)
			charmed := ally(11, "warrior", 10, 500)
			ally(12, "rogue", 12, 800)
			enemy := f.m.AddUnit(world.NewUnit(13, "warlock", types.KindPlayer))
			enemy.Team = 2
			enemy.Pos = types.Position{X: 40}
			charmed.Charmer = enemy.GUID
			if tt.sanctuary {
				charmed.SetFlag(types.UnitFlagSanctuary)
			}

			s := &types.SpellDef{
				ID:       1064,
				Name:     "Chain Heal",
				School:   types.SchoolNature,
				DmgClass: types.DamageClassMagic,
				Range:    types.Range{Max: 40},
				Effects: [types.MaxEffectIndex]types.EffectDef{
					{Type: types.EffectHeal, TargetA: types.TargetChainHeal, ChainTargets: 3, BasePoints: 50},
				},
			}
			a, _ := f.cast(t, s, main)
			if got := liveCount(a); got != tt.wantN {
				t.Errorf("chain length = %d, want %d", got, tt.wantN)
			}
		})
	}
}
