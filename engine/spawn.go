package engine

import (
	"fmt"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// spawn populates the map from the world definitions. GUIDs are handed
// out in definition order (units, then game objects, then items) so a
// world always loads with the same GUIDs.
func spawn(m *world.Map, defs *state.Defs) error {
	byName := map[string]*world.Unit{}
	for _, d := range defs.Units {
		u := m.AddUnit(newUnit(m.NewGUID(), d))
		byName[d.Name] = u
	}

	lookup := func(owner, name string) (types.GUID, error) {
		if name == "" {
			return 0, nil
		}
		u, ok := byName[name]
		if !ok {
			return 0, fmt.Errorf("%s: unknown unit %q", owner, name)
		}
		return u.GUID, nil
	}

	for _, d := range defs.Units {
		u := byName[d.Name]
		var err error
		if u.Owner, err = lookup(d.Name, d.Owner); err != nil {
			return err
		}
		if u.Pet, err = lookup(d.Name, d.Pet); err != nil {
			return err
		}
		if u.Charm, err = lookup(d.Name, d.Charm); err != nil {
			return err
		}
		if u.Charm != 0 {
			m.Unit(u.Charm).Charmer = u.GUID
		}
		for _, ad := range d.Auras {
			caster := u.GUID
			if ad.Caster != "" {
				if caster, err = lookup(d.Name, ad.Caster); err != nil {
					return err
				}
			}
			u.AddAura(newAura(defs, ad, caster))
		}
	}

	for _, d := range defs.GameObjects {
		owner, err := lookup(d.Name, d.Owner)
		if err != nil {
			return err
		}
		m.AddGameObject(&world.GameObject{
			GUID:    m.NewGUID(),
			Entry:   d.Entry,
			Name:    d.Name,
			Type:    d.Type,
			Pos:     d.Pos,
			MapID:   m.ID,
			FocusID: d.FocusID,
			Spawned: d.Spawned,
			Owner:   owner,
		})
	}

	for _, d := range defs.Items {
		owner, err := lookup(d.Name, d.Owner)
		if err != nil {
			return err
		}
		m.AddItem(&world.Item{
			GUID:       m.NewGUID(),
			Entry:      d.Entry,
			Name:       d.Name,
			Owner:      owner,
			Class:      d.Class,
			Charges:    d.Charges,
			MaxCharges: d.Charges,
			Expendable: d.Expendable,
			Spell:      d.Spell,
			CooldownMS: d.CooldownMS,
		})
		if u := m.Unit(owner); u != nil {
			u.Inventory[d.Entry]++
		}
	}
	return nil
}

func newUnit(g types.GUID, d types.UnitDef) *world.Unit {
	u := world.NewUnit(g, d.Name, d.Kind)
	u.Entry = d.Entry
	u.Class, u.Race, u.Team = d.Class, d.Race, d.Team
	if d.Level > 0 {
		u.Level = d.Level
	}
	if d.MaxHealth > 0 {
		u.MaxHealth = d.MaxHealth
		u.Health = d.MaxHealth
	}
	if d.Health > 0 {
		u.Health = d.Health
	}
	for p, v := range d.MaxPower {
		if p >= 0 && p < types.MaxPowers {
			u.MaxPower[p] = v
			u.Power[p] = v
		}
	}
	for p, v := range d.Power {
		if p >= 0 && p < types.MaxPowers {
			u.Power[p] = v
		}
	}
	u.Pos = d.Pos
	u.AreaID = d.AreaID
	u.Group, u.SubGroup = d.Group, d.SubGroup
	u.Flags = d.Flags
	u.Form = d.Form
	u.AuraState = d.AuraState
	u.CreatureType = d.CreatureType
	for entry, n := range d.Items {
		u.Inventory[entry] += n
	}
	u.Home, u.HomeMapID = d.Home, d.HomeMapID
	u.BoundingRadius = d.BoundingRadius
	u.CombatReach = d.CombatReach
	if d.CastSpeed > 0 {
		u.CastSpeed = d.CastSpeed
	}
	u.ResistPushback = d.ResistPushback
	u.ComboPoints = d.ComboPoints
	return u
}

// newAura builds a starting aura. Polarity and mechanic come from the
// spell definition when the world defines it.
func newAura(defs *state.Defs, d types.AuraDef, caster types.GUID) *world.Aura {
	a := &world.Aura{
		SpellID:     d.Spell,
		EffIndex:    d.EffIndex,
		Type:        d.Type,
		CasterGUID:  caster,
		Charges:     d.Charges,
		Amount:      d.Amount,
		DurationMS:  d.DurationMS,
		RemainingMS: d.DurationMS,
		Positive:    true,
	}
	if s := defs.Spell(d.Spell); s != nil && d.EffIndex >= 0 && d.EffIndex < types.MaxEffectIndex {
		a.Positive = state.IsPositiveEffect(s, d.EffIndex)
		a.Mechanic = s.Effects[d.EffIndex].Mechanic
	}
	return a
}
