package spell

import "github.com/nathoo/spellcore/types"

// SlotTable holds each caster's current attempts, one per slot. It is the
// only cast state shared between attempts.
type SlotTable struct {
	rows map[types.GUID]*[types.MaxSlots]*Attempt
}

func NewSlotTable() *SlotTable {
	return &SlotTable{rows: map[types.GUID]*[types.MaxSlots]*Attempt{}}
}

// Get returns the occupant of a slot, or nil.
func (t *SlotTable) Get(caster types.GUID, slot types.SlotType) *Attempt {
	row, ok := t.rows[caster]
	if !ok || slot < 0 || slot >= types.MaxSlots {
		return nil
	}
	return row[slot]
}

// Set stores a in its slot. A previous occupant is cancelled first,
// unless its missile is already in flight.
func (t *SlotTable) Set(a *Attempt) {
	row, ok := t.rows[a.casterGUID]
	if !ok {
		row = &[types.MaxSlots]*Attempt{}
		t.rows[a.casterGUID] = row
	}
	if old := row[a.slot]; old != nil && old != a {
		row[a.slot] = nil
		if old.State() != types.StateDelayed {
			old.Cancel(types.CastFailedIntByOtherCast)
		}
	}
	row[a.slot] = a
}

// Clear empties a's slot when a still occupies it.
func (t *SlotTable) Clear(a *Attempt) {
	row, ok := t.rows[a.casterGUID]
	if !ok || row[a.slot] != a {
		return
	}
	row[a.slot] = nil
	for _, o := range row {
		if o != nil {
			return
		}
	}
	delete(t.rows, a.casterGUID)
}

// Holds reports whether a occupies any slot.
func (t *SlotTable) Holds(a *Attempt) bool {
	return t.Get(a.casterGUID, a.slot) == a
}

// Active returns the caster's occupants in slot order.
func (t *SlotTable) Active(caster types.GUID) []*Attempt {
	row, ok := t.rows[caster]
	if !ok {
		return nil
	}
	var out []*Attempt
	for _, a := range row {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Casting reports whether the caster has an unfinished non-melee attempt
// other than except. Missiles in flight do not count.
func (t *SlotTable) Casting(caster types.GUID, except *Attempt) bool {
	for _, a := range t.Active(caster) {
		if a == except || a.slot == types.SlotMelee {
			continue
		}
		if st := a.State(); st != types.StateFinished && st != types.StateDelayed {
			return true
		}
	}
	return false
}
