package world

// Cooldowns tracks per-spell, per-item and global cooldown expiry times
// in simulation milliseconds.
type Cooldowns struct {
	Spells map[uint32]int64 `json:"spells,omitempty"`
	Items  map[uint32]int64 `json:"items,omitempty"`
	Global map[uint32]int64 `json:"global,omitempty"`
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		Spells: map[uint32]int64{},
		Items:  map[uint32]int64{},
		Global: map[uint32]int64{},
	}
}

// HasSpell reports whether id is still cooling down at now.
func (c *Cooldowns) HasSpell(id uint32, now int64) bool {
	return c.Spells[id] > now
}

// SpellRemaining returns the remaining cooldown in ms.
func (c *Cooldowns) SpellRemaining(id uint32, now int64) int64 {
	if r := c.Spells[id] - now; r > 0 {
		return r
	}
	return 0
}

// AddSpell starts a cooldown ending at until. A later expiry already in
// place is kept.
func (c *Cooldowns) AddSpell(id uint32, until int64) {
	if c.Spells[id] < until {
		c.Spells[id] = until
	}
}

func (c *Cooldowns) RemoveSpell(id uint32) { delete(c.Spells, id) }

func (c *Cooldowns) HasItem(entry uint32, now int64) bool {
	return c.Items[entry] > now
}

func (c *Cooldowns) AddItem(entry uint32, until int64) {
	if c.Items[entry] < until {
		c.Items[entry] = until
	}
}

// HasGlobal reports whether a start-recovery category is locked.
func (c *Cooldowns) HasGlobal(category uint32, now int64) bool {
	return c.Global[category] > now
}

func (c *Cooldowns) AddGlobal(category uint32, until int64) {
	c.Global[category] = until
}

func (c *Cooldowns) CancelGlobal(category uint32) {
	delete(c.Global, category)
}

// Prune drops every expired entry.
func (c *Cooldowns) Prune(now int64) {
	for _, m := range []map[uint32]int64{c.Spells, c.Items, c.Global} {
		for k, v := range m {
			if v <= now {
				delete(m, k)
			}
		}
	}
}
