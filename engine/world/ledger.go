package world

import "github.com/nathoo/spellcore/types"

// Power reads a unit's current pool. PowerHealth reads health.
func (m *Map) Power(u *Unit, p types.PowerType) int {
	if p == types.PowerHealth {
		return u.Health
	}
	if p < 0 || p >= types.MaxPowers {
		return 0
	}
	return u.Power[p]
}

// SpendPower subtracts cost from a pool and returns the amount taken.
func (m *Map) SpendPower(u *Unit, p types.PowerType, cost int) int {
	if cost <= 0 {
		return 0
	}
	if p == types.PowerHealth {
		return -u.ModifyHealth(-cost)
	}
	return -u.ModifyPower(p, -cost)
}

// HasItemCount reports whether the unit carries count of an item entry.
func (m *Map) HasItemCount(u *Unit, entry uint32, count int) bool {
	return u.Inventory[entry] >= count
}

// DestroyItemCount removes up to count of an item entry.
func (m *Map) DestroyItemCount(u *Unit, entry uint32, count int) {
	left := u.Inventory[entry] - count
	if left <= 0 {
		delete(u.Inventory, entry)
		return
	}
	u.Inventory[entry] = left
}

// ConsumeCharge spends one charge of an item. Expendable items with no
// charges left are destroyed; the return reports destruction.
func (m *Map) ConsumeCharge(it *Item) bool {
	if it.Charges > 0 {
		it.Charges--
	}
	if it.Expendable && it.Charges == 0 {
		m.RemoveItem(it.GUID)
		if owner := m.Unit(it.Owner); owner != nil {
			m.DestroyItemCount(owner, it.Entry, 1)
		}
		return true
	}
	return false
}

// Cooldowns returns the unit's cooldown store, allocating it if needed.
func (m *Map) Cooldowns(u *Unit) *Cooldowns {
	if u.Cooldowns == nil {
		u.Cooldowns = NewCooldowns()
	}
	return u.Cooldowns
}
