// Package save implements JSON serialization and deserialization of the
// simulation state. Running casts are not saved; loading a save cancels
// whatever is in flight.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string      `json:"version"`
	World       string      `json:"world"`
	Session     uuid.UUID   `json:"session"`
	ClockMS     int64       `json:"clock_ms"`
	RNGSeed     int64       `json:"rng_seed"`
	RNGPosition int64       `json:"rng_position"`
	Units       []UnitState `json:"units"`
	Items       []ItemState `json:"items"`
	CommandLog  []string    `json:"command_log"`
}

// UnitState is the mutable part of one unit.
type UnitState struct {
	GUID      types.GUID       `json:"guid"`
	Name      string           `json:"name"`
	Pos       types.Position   `json:"pos"`
	Health    int              `json:"health"`
	Combo     int              `json:"combo_points,omitempty"`
	Power     []int            `json:"power"`
	Flags     types.UnitFlag   `json:"flags"`
	Victim    types.GUID       `json:"victim,omitempty"`
	Auras     []AuraState      `json:"auras"`
	Cooldowns *world.Cooldowns `json:"cooldowns"`
	Inventory map[uint32]int   `json:"inventory"`
}

// AuraState is one saved aura.
type AuraState struct {
	Spell       uint32         `json:"spell"`
	EffIndex    int            `json:"eff_index"`
	Type        types.AuraType `json:"type"`
	Caster      types.GUID     `json:"caster"`
	Charges     int            `json:"charges,omitempty"`
	Amount      int            `json:"amount,omitempty"`
	DurationMS  int            `json:"duration_ms,omitempty"`
	RemainingMS int            `json:"remaining_ms,omitempty"`
	Positive    bool           `json:"positive"`
	Mechanic    types.Mechanic `json:"mechanic,omitempty"`
}

// ItemState is the charge count of one item still in the world.
type ItemState struct {
	GUID    types.GUID `json:"guid"`
	Charges int        `json:"charges"`
}

// Save serializes the engine state to JSON bytes.
func Save(e *engine.Engine) ([]byte, error) {
	data := SaveData{
		Version:     e.Defs.World.Version,
		World:       e.Defs.World.Title,
		Session:     e.Session,
		ClockMS:     e.Now(),
		RNGSeed:     e.RNG.Seed(),
		RNGPosition: e.RNG.Position(),
		CommandLog:  e.CommandLog,
	}
	for _, u := range e.Map.Units() {
		us := UnitState{
			GUID:      u.GUID,
			Name:      u.Name,
			Pos:       u.Pos,
			Health:    u.Health,
			Combo:     u.ComboPoints,
			Power:     append([]int(nil), u.Power[:]...),
			Flags:     u.Flags &^ (types.UnitFlagCasting | types.UnitFlagCastingNotMove),
			Victim:    u.Victim,
			Cooldowns: u.Cooldowns,
			Inventory: u.Inventory,
		}
		for _, a := range u.Auras {
			us.Auras = append(us.Auras, AuraState{
				Spell:       a.SpellID,
				EffIndex:    a.EffIndex,
				Type:        a.Type,
				Caster:      a.CasterGUID,
				Charges:     a.Charges,
				Amount:      a.Amount,
				DurationMS:  a.DurationMS,
				RemainingMS: a.RemainingMS,
				Positive:    a.Positive,
				Mechanic:    a.Mechanic,
			})
		}
		data.Units = append(data.Units, us)
	}
	for _, u := range e.Map.Units() {
		for _, it := range e.Map.ItemsOf(u.GUID) {
			data.Items = append(data.Items, ItemState{GUID: it.GUID, Charges: it.Charges})
		}
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure maps are never nil after load.
	for i := range sd.Units {
		u := &sd.Units[i]
		if u.Inventory == nil {
			u.Inventory = map[uint32]int{}
		}
		if u.Cooldowns == nil {
			u.Cooldowns = world.NewCooldowns()
		}
		for _, m := range []*map[uint32]int64{&u.Cooldowns.Spells, &u.Cooldowns.Items, &u.Cooldowns.Global} {
			if *m == nil {
				*m = map[uint32]int64{}
			}
		}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto an engine spawned from the
// same world. Every saved unit must exist in it.
func ApplySave(e *engine.Engine, sd *SaveData) error {
	for _, us := range sd.Units {
		if e.Map.Unit(us.GUID) == nil {
			return fmt.Errorf("saved unit %s #%d is not in this world", us.Name, us.GUID)
		}
	}

	e.Reset()
	e.Map.SetNow(sd.ClockMS)
	for _, us := range sd.Units {
		u := e.Map.Unit(us.GUID)
		u.Pos = us.Pos
		u.Health = us.Health
		u.ComboPoints = us.Combo
		u.Power = [types.MaxPowers]int{}
		copy(u.Power[:], us.Power)
		u.Flags = us.Flags
		u.Victim = us.Victim
		u.Cooldowns = us.Cooldowns
		u.Inventory = us.Inventory
		u.Auras = nil
		for _, a := range us.Auras {
			u.AddAura(&world.Aura{
				SpellID:     a.Spell,
				EffIndex:    a.EffIndex,
				Type:        a.Type,
				CasterGUID:  a.Caster,
				Charges:     a.Charges,
				Amount:      a.Amount,
				DurationMS:  a.DurationMS,
				RemainingMS: a.RemainingMS,
				Positive:    a.Positive,
				Mechanic:    a.Mechanic,
			})
		}
	}

	saved := make(map[types.GUID]int, len(sd.Items))
	for _, is := range sd.Items {
		saved[is.GUID] = is.Charges
	}
	for _, u := range e.Map.Units() {
		for _, it := range e.Map.ItemsOf(u.GUID) {
			if c, ok := saved[it.GUID]; ok {
				it.Charges = c
			} else {
				e.Map.RemoveItem(it.GUID)
			}
		}
	}

	e.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	e.Session = sd.Session
	e.CommandLog = sd.CommandLog
	return nil
}
