// Package world is the in-memory entity directory, spatial index and
// terrain used by the spell engine. Every lookup is keyed by GUID and a
// missing GUID is a normal outcome.
package world

import (
	"math"

	"github.com/nathoo/spellcore/types"
)

// Aura is one applied aura effect on a unit.
type Aura struct {
	SpellID     uint32
	EffIndex    int
	Type        types.AuraType
	CasterGUID  types.GUID
	Charges     int
	Amount      int
	DurationMS  int
	RemainingMS int
	Positive    bool
	Mechanic    types.Mechanic
}

// Unit is a player, creature or pet.
type Unit struct {
	GUID      types.GUID
	Entry     uint32
	Name      string
	Kind      types.ObjectKind
	Pos       types.Position
	MapID     uint32
	AreaID    uint32
	Level     int
	Class     int
	Race      int
	Team      int
	Health    int
	MaxHealth int
	Power     [types.MaxPowers]int
	MaxPower  [types.MaxPowers]int

	CreatureType uint32
	Flags        types.UnitFlag
	Form         uint32
	AuraState    uint32
	Auras        []*Aura

	Owner   types.GUID
	Charmer types.GUID
	Pet     types.GUID
	Charm   types.GUID
	Victim  types.GUID

	Group    int
	SubGroup int

	BoundingRadius float64
	CombatReach    float64
	CastSpeed      float64
	ResistPushback int // percent

	Home      types.Position
	HomeMapID uint32

	Inventory map[uint32]int
	Cooldowns *Cooldowns

	ComboPoints      int
	ExtraAttacks     int
	MeleeTimerResets int
	RangedAttackMS   int
	RangedResets     int
	Attacking        bool
}

// NewUnit returns a unit with its maps and cooldown store allocated.
func NewUnit(guid types.GUID, name string, kind types.ObjectKind) *Unit {
	return &Unit{
		GUID:           guid,
		Name:           name,
		Kind:           kind,
		Level:          1,
		Health:         1,
		MaxHealth:      1,
		CastSpeed:      1,
		RangedAttackMS: 2000,
		Inventory:      map[uint32]int{},
		Cooldowns:      NewCooldowns(),
	}
}

func (u *Unit) IsPlayer() bool   { return u.Kind == types.KindPlayer }
func (u *Unit) IsCreature() bool { return u.Kind == types.KindCreature }
func (u *Unit) IsAlive() bool    { return u.Health > 0 }
func (u *Unit) IsPet() bool      { return u.HasFlag(types.UnitFlagPet) }
func (u *Unit) IsTotem() bool    { return u.HasFlag(types.UnitFlagTotem) }
func (u *Unit) IsPvP() bool      { return u.HasFlag(types.UnitFlagPvP) }
func (u *Unit) IsMoving() bool   { return u.HasFlag(types.UnitFlagMoving) }
func (u *Unit) IsFalling() bool  { return u.HasFlag(types.UnitFlagFalling) }
func (u *Unit) InSanctuary() bool {
	return u.HasFlag(types.UnitFlagSanctuary)
}

func (u *Unit) HasFlag(f types.UnitFlag) bool { return u.Flags&f != 0 }
func (u *Unit) SetFlag(f types.UnitFlag)      { u.Flags |= f }
func (u *Unit) ClearFlag(f types.UnitFlag)    { u.Flags &^= f }

// CharmerOrOwner returns the controlling GUID, or zero.
func (u *Unit) CharmerOrOwner() types.GUID {
	if u.Charmer != 0 {
		return u.Charmer
	}
	return u.Owner
}

// HasAura reports whether any aura of the spell is present.
func (u *Unit) HasAura(spellID uint32) bool {
	for _, a := range u.Auras {
		if a.SpellID == spellID {
			return true
		}
	}
	return false
}

// HasAuraType reports whether any aura of the given type is present.
func (u *Unit) HasAuraType(t types.AuraType) bool {
	for _, a := range u.Auras {
		if a.Type == t {
			return true
		}
	}
	return false
}

// AurasOfType returns the auras of one type in application order.
func (u *Unit) AurasOfType(t types.AuraType) []*Aura {
	var out []*Aura
	for _, a := range u.Auras {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Aura returns the aura of a spell and effect index applied by caster.
func (u *Unit) Aura(spellID uint32, eff int, caster types.GUID) *Aura {
	for _, a := range u.Auras {
		if a.SpellID == spellID && a.EffIndex == eff && a.CasterGUID == caster {
			return a
		}
	}
	return nil
}

// AddAura applies an aura. An existing aura of the same spell, effect and
// caster is refreshed instead of stacked.
func (u *Unit) AddAura(a *Aura) {
	if old := u.Aura(a.SpellID, a.EffIndex, a.CasterGUID); old != nil {
		*old = *a
		return
	}
	u.Auras = append(u.Auras, a)
}

// RemoveAura removes every aura of the spell and returns the count removed.
func (u *Unit) RemoveAura(spellID uint32) int {
	return u.removeWhere(func(a *Aura) bool { return a.SpellID == spellID })
}

// RemoveAuraByCaster removes the auras of a spell applied by one caster.
func (u *Unit) RemoveAuraByCaster(spellID uint32, caster types.GUID) int {
	return u.removeWhere(func(a *Aura) bool {
		return a.SpellID == spellID && a.CasterGUID == caster
	})
}

// RemoveAuraInstance removes exactly one aura instance.
func (u *Unit) RemoveAuraInstance(target *Aura) {
	u.removeWhere(func(a *Aura) bool { return a == target })
}

func (u *Unit) removeWhere(pred func(*Aura) bool) int {
	kept := u.Auras[:0]
	removed := 0
	for _, a := range u.Auras {
		if pred(a) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(u.Auras); i++ {
		u.Auras[i] = nil
	}
	u.Auras = kept
	return removed
}

// DelayAura shortens the remaining time of a spell's auras from caster.
func (u *Unit) DelayAura(spellID uint32, caster types.GUID, ms int) {
	for _, a := range u.Auras {
		if a.SpellID != spellID || a.CasterGUID != caster || a.RemainingMS <= 0 {
			continue
		}
		a.RemainingMS -= ms
		if a.RemainingMS < 0 {
			a.RemainingMS = 0
		}
	}
}

// TickAuras advances aura timers and drops expired ones. It returns the
// expired auras.
func (u *Unit) TickAuras(ms int) []*Aura {
	var expired []*Aura
	u.removeWhere(func(a *Aura) bool {
		if a.DurationMS <= 0 {
			return false
		}
		a.RemainingMS -= ms
		if a.RemainingMS <= 0 {
			expired = append(expired, a)
			return true
		}
		return false
	})
	return expired
}

// IsImmuneToMechanic reports a mechanic immunity aura for m.
func (u *Unit) IsImmuneToMechanic(m types.Mechanic) bool {
	if m == types.MechanicNone {
		return false
	}
	for _, a := range u.AurasOfType(types.AuraMechanicImmunity) {
		if types.Mechanic(a.Amount) == m {
			return true
		}
	}
	return false
}

// IsImmuneToSchool reports a school immunity aura covering s.
func (u *Unit) IsImmuneToSchool(s types.School) bool {
	for _, a := range u.AurasOfType(types.AuraSchoolImmunity) {
		if a.Amount&(1<<s) != 0 {
			return true
		}
	}
	return false
}

// IsCrowdControlled reports a negative aura broken by damage.
func (u *Unit) IsCrowdControlled() bool {
	for _, a := range u.Auras {
		if a.Positive {
			continue
		}
		switch a.Type {
		case types.AuraModConfuse, types.AuraModFear, types.AuraModStun:
			return true
		}
	}
	return false
}

// IsFriendlyTo is true for units on the same non-zero team.
func (u *Unit) IsFriendlyTo(o *Unit) bool {
	if u == o {
		return true
	}
	return u.Team != 0 && u.Team == o.Team
}

// IsHostileTo is true for units on different non-zero teams.
func (u *Unit) IsHostileTo(o *Unit) bool {
	if u == o {
		return false
	}
	return u.Team != 0 && o.Team != 0 && u.Team != o.Team
}

// InRaidWith reports membership of the same group.
func (u *Unit) InRaidWith(o *Unit) bool {
	if u == o {
		return true
	}
	return u.Group != 0 && u.Group == o.Group
}

// InPartyWith reports membership of the same sub-group.
func (u *Unit) InPartyWith(o *Unit) bool {
	return u.InRaidWith(o) && (u == o || u.SubGroup == o.SubGroup)
}

// CanDetect reports whether u can see o. Stealthed and invisible units
// are hidden from hostile observers.
func (u *Unit) CanDetect(o *Unit) bool {
	if u == o || u.IsFriendlyTo(o) {
		return true
	}
	if o.HasFlag(types.UnitFlagGameMaster) {
		return false
	}
	return !o.HasFlag(types.UnitFlagStealthed) && !o.HasFlag(types.UnitFlagInvisible)
}

// Distance is the 3D gap between the two units' bounding spheres.
func (u *Unit) Distance(o *Unit) float64 {
	d := Dist3D(u.Pos, o.Pos) - u.BoundingRadius - o.BoundingRadius
	if d < 0 {
		return 0
	}
	return d
}

// DistanceTo is the 3D gap between the unit's bounding sphere and a point.
func (u *Unit) DistanceTo(p types.Position) float64 {
	d := Dist3D(u.Pos, p) - u.BoundingRadius
	if d < 0 {
		return 0
	}
	return d
}

// IsInFront reports whether o lies within a 180 degree arc of u's facing
// and within dist.
func (u *Unit) IsInFront(o *Unit, dist float64) bool {
	return u.Distance(o) <= dist && HasInArc(u.Pos, math.Pi, o.Pos)
}

// IsInBack reports whether o lies in the rear 180 degree arc.
func (u *Unit) IsInBack(o *Unit, dist float64) bool {
	return u.Distance(o) <= dist && !HasInArc(u.Pos, math.Pi, o.Pos)
}

// ModifyHealth applies delta clamped to [0, MaxHealth] and returns the
// amount actually applied.
func (u *Unit) ModifyHealth(delta int) int {
	old := u.Health
	u.Health += delta
	if u.Health > u.MaxHealth {
		u.Health = u.MaxHealth
	}
	if u.Health < 0 {
		u.Health = 0
	}
	return u.Health - old
}

// ModifyPower applies delta to one power pool, clamped.
func (u *Unit) ModifyPower(p types.PowerType, delta int) int {
	if p < 0 || p >= types.MaxPowers {
		return 0
	}
	old := u.Power[p]
	u.Power[p] += delta
	if u.Power[p] > u.MaxPower[p] {
		u.Power[p] = u.MaxPower[p]
	}
	if u.Power[p] < 0 {
		u.Power[p] = 0
	}
	return u.Power[p] - old
}
