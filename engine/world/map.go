package world

import (
	"sort"

	"github.com/nathoo/spellcore/types"
)

// Map is one spatial partition: the directory of every live object on it
// plus the simulation clock. Queries visit objects in ascending GUID
// order so results are deterministic.
type Map struct {
	ID      uint32
	Terrain *Terrain

	now     int64
	next    types.GUID
	units   map[types.GUID]*Unit
	gos     map[types.GUID]*GameObject
	items   map[types.GUID]*Item
	corpses map[types.GUID]*Corpse
	trades  map[types.GUID][]types.GUID
}

// NewMap returns an empty map over the given terrain.
func NewMap(id uint32, terrain *Terrain) *Map {
	if terrain == nil {
		terrain = &Terrain{}
	}
	return &Map{
		ID:      id,
		Terrain: terrain,
		next:    1,
		units:   map[types.GUID]*Unit{},
		gos:     map[types.GUID]*GameObject{},
		items:   map[types.GUID]*Item{},
		corpses: map[types.GUID]*Corpse{},
		trades:  map[types.GUID][]types.GUID{},
	}
}

// Now is the simulation time in milliseconds.
func (m *Map) Now() int64 { return m.now }

// Advance moves the clock forward and ticks every aura timer. It returns
// the auras that expired, keyed by owner.
func (m *Map) Advance(ms int) map[types.GUID][]*Aura {
	m.now += int64(ms)
	expired := map[types.GUID][]*Aura{}
	for _, u := range m.Units() {
		if gone := u.TickAuras(ms); len(gone) > 0 {
			expired[u.GUID] = gone
		}
	}
	return expired
}

// SetNow restores the clock, used when loading a save.
func (m *Map) SetNow(now int64) { m.now = now }

// NewGUID allocates the next free GUID.
func (m *Map) NewGUID() types.GUID {
	g := m.next
	m.next++
	return g
}

func (m *Map) reserve(g types.GUID) {
	if g >= m.next {
		m.next = g + 1
	}
}

// AddUnit registers a unit. A zero GUID is allocated.
func (m *Map) AddUnit(u *Unit) *Unit {
	if u.GUID == 0 {
		u.GUID = m.NewGUID()
	}
	m.reserve(u.GUID)
	u.MapID = m.ID
	m.units[u.GUID] = u
	return u
}

// RemoveUnit drops a unit from the directory.
func (m *Map) RemoveUnit(g types.GUID) { delete(m.units, g) }

// Unit resolves a GUID, returning nil when it is gone.
func (m *Map) Unit(g types.GUID) *Unit { return m.units[g] }

// Units returns every unit in GUID order.
func (m *Map) Units() []*Unit {
	out := make([]*Unit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out
}

// UnitByName finds a unit by exact name.
func (m *Map) UnitByName(name string) *Unit {
	for _, u := range m.Units() {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Pet resolves the unit's pet, or its charm when it has no pet.
func (m *Map) Pet(u *Unit) *Unit {
	if p := m.Unit(u.Pet); p != nil {
		return p
	}
	return m.Unit(u.Charm)
}

// Master resolves the unit's charmer or owner.
func (m *Map) Master(u *Unit) *Unit {
	return m.Unit(u.CharmerOrOwner())
}

// OwnerOrSelf resolves the controlling unit, falling back to u.
func (m *Map) OwnerOrSelf(u *Unit) *Unit {
	if o := m.Master(u); o != nil {
		return o
	}
	return u
}

func (m *Map) AddGameObject(g *GameObject) *GameObject {
	if g.GUID == 0 {
		g.GUID = m.NewGUID()
	}
	m.reserve(g.GUID)
	g.MapID = m.ID
	m.gos[g.GUID] = g
	return g
}

func (m *Map) RemoveGameObject(g types.GUID)       { delete(m.gos, g) }
func (m *Map) GameObject(g types.GUID) *GameObject { return m.gos[g] }

// GameObjects returns every game object in GUID order.
func (m *Map) GameObjects() []*GameObject {
	out := make([]*GameObject, 0, len(m.gos))
	for _, g := range m.gos {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out
}

func (m *Map) AddItem(it *Item) *Item {
	if it.GUID == 0 {
		it.GUID = m.NewGUID()
	}
	m.reserve(it.GUID)
	m.items[it.GUID] = it
	return it
}

func (m *Map) RemoveItem(g types.GUID) { delete(m.items, g) }
func (m *Map) Item(g types.GUID) *Item { return m.items[g] }

// ItemsOf returns the items owned by a unit in GUID order.
func (m *Map) ItemsOf(owner types.GUID) []*Item {
	var out []*Item
	for _, it := range m.items {
		if it.Owner == owner {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out
}

// SetTradeSlot places an item into a unit's trade window.
func (m *Map) SetTradeSlot(trader types.GUID, slot int, item types.GUID) {
	t := m.trades[trader]
	for len(t) <= slot {
		t = append(t, 0)
	}
	t[slot] = item
	m.trades[trader] = t
}

// TradeItem resolves the item sitting in a trader's slot.
func (m *Map) TradeItem(trader types.GUID, slot int) *Item {
	t := m.trades[trader]
	if slot < 0 || slot >= len(t) {
		return nil
	}
	return m.Item(t[slot])
}

func (m *Map) AddCorpse(c *Corpse) *Corpse {
	if c.GUID == 0 {
		c.GUID = m.NewGUID()
	}
	m.reserve(c.GUID)
	c.MapID = m.ID
	m.corpses[c.GUID] = c
	return c
}

func (m *Map) RemoveCorpse(g types.GUID)   { delete(m.corpses, g) }
func (m *Map) Corpse(g types.GUID) *Corpse { return m.corpses[g] }

// UnitsInRange returns the units within radius of center accepted by
// pred, in GUID order. A nil pred accepts everything.
func (m *Map) UnitsInRange(center types.Position, radius float64, pred func(*Unit) bool) []*Unit {
	var out []*Unit
	for _, u := range m.Units() {
		if u.DistanceTo(center) > radius {
			continue
		}
		if pred != nil && !pred(u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// NearestUnit returns the closest accepted unit within radius. Ties go to
// the lower GUID.
func (m *Map) NearestUnit(center types.Position, radius float64, pred func(*Unit) bool) *Unit {
	var best *Unit
	bestDist := radius
	for _, u := range m.UnitsInRange(center, radius, pred) {
		if d := u.DistanceTo(center); best == nil || d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}

// GameObjectsInRange returns the spawned objects within radius.
func (m *Map) GameObjectsInRange(center types.Position, radius float64, pred func(*GameObject) bool) []*GameObject {
	var out []*GameObject
	for _, g := range m.GameObjects() {
		if !g.Spawned || Dist3D(center, g.Pos) > radius {
			continue
		}
		if pred != nil && !pred(g) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// NearestGameObject returns the closest spawned object accepted by pred.
func (m *Map) NearestGameObject(center types.Position, radius float64, pred func(*GameObject) bool) *GameObject {
	var best *GameObject
	bestDist := radius
	for _, g := range m.GameObjectsInRange(center, radius, pred) {
		if d := Dist3D(center, g.Pos); best == nil || d < bestDist {
			best, bestDist = g, d
		}
	}
	return best
}

// NearestCorpse returns the closest corpse within radius.
func (m *Map) NearestCorpse(center types.Position, radius float64) *Corpse {
	var best *Corpse
	bestDist := radius
	ids := make([]types.GUID, 0, len(m.corpses))
	for g := range m.corpses {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, g := range ids {
		c := m.corpses[g]
		if d := Dist3D(center, c.Pos); d <= radius && (best == nil || d < bestDist) {
			best, bestDist = c, d
		}
	}
	return best
}

// GroupMembers returns the units of a group in GUID order.
func (m *Map) GroupMembers(group int) []*Unit {
	if group == 0 {
		return nil
	}
	var out []*Unit
	for _, u := range m.Units() {
		if u.Group == group {
			out = append(out, u)
		}
	}
	return out
}
