// Package targets holds the cast target snapshot: the explicit targets a
// caster picked, stored as GUID weak references and re-resolved at every
// phase boundary. The mask is the only source of truth for which kinds
// are present.
package targets

import (
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// Resolver turns GUIDs back into live objects. Nil means gone.
type Resolver interface {
	Unit(types.GUID) *world.Unit
	GameObject(types.GUID) *world.GameObject
	Item(types.GUID) *world.Item
	Corpse(types.GUID) *world.Corpse
	TradeItem(trader types.GUID, slot int) *world.Item
}

// UnitRef is a weak reference to a unit.
type UnitRef struct {
	GUID types.GUID
	live *world.Unit
}

// GORef is a weak reference to a game object.
type GORef struct {
	GUID types.GUID
	live *world.GameObject
}

// ItemRef is either an inventory item (GUID) or a trade window slot. The
// two variants never share a field.
type ItemRef struct {
	GUID      types.GUID
	TradeSlot int
	IsTrade   bool
	Trader    types.GUID
	live      *world.Item
}

// CorpseRef is a weak reference to a corpse.
type CorpseRef struct {
	GUID types.GUID
	live *world.Corpse
}

// Snapshot is the set of explicit targets of one cast.
type Snapshot struct {
	Mask   types.TargetFlag
	unit   UnitRef
	gobj   GORef
	item   ItemRef
	corpse CorpseRef
	Src    types.Position
	Dst    types.Position
	DstMap uint32
	Str    string
}

// Has reports whether the mask covers f.
func (s *Snapshot) Has(f types.TargetFlag) bool { return s.Mask&f != 0 }

// IsEmpty is true for a self-cast snapshot.
func (s *Snapshot) IsEmpty() bool { return s.Mask == types.TargetFlagSelf }

// SetUnit stores a unit target. A nil unit clears it.
func (s *Snapshot) SetUnit(u *world.Unit) {
	if u == nil {
		s.unit = UnitRef{}
		s.Mask &^= types.TargetFlagUnit
		return
	}
	s.unit = UnitRef{GUID: u.GUID, live: u}
	s.Mask |= types.TargetFlagUnit
}

// Unit returns the live unit target, or nil when absent or unresolved.
func (s *Snapshot) Unit() *world.Unit {
	if !s.Has(types.TargetFlagUnit) {
		return nil
	}
	return s.unit.live
}

// UnitGUID returns the unit target GUID, or zero.
func (s *Snapshot) UnitGUID() types.GUID {
	if !s.Has(types.TargetFlagUnit) {
		return 0
	}
	return s.unit.GUID
}

// SetGameObject stores a game object target.
func (s *Snapshot) SetGameObject(g *world.GameObject) {
	if g == nil {
		s.gobj = GORef{}
		s.Mask &^= types.TargetFlagObject
		return
	}
	s.gobj = GORef{GUID: g.GUID, live: g}
	s.Mask |= types.TargetFlagObject
}

func (s *Snapshot) GameObject() *world.GameObject {
	if !s.Has(types.TargetFlagObject) {
		return nil
	}
	return s.gobj.live
}

func (s *Snapshot) GameObjectGUID() types.GUID {
	if !s.Has(types.TargetFlagObject) {
		return 0
	}
	return s.gobj.GUID
}

// SetItem stores an inventory item target.
func (s *Snapshot) SetItem(it *world.Item) {
	s.Mask &^= types.TargetFlagTradeItem
	if it == nil {
		s.item = ItemRef{}
		s.Mask &^= types.TargetFlagItem
		return
	}
	s.item = ItemRef{GUID: it.GUID, live: it}
	s.Mask |= types.TargetFlagItem
}

// SetTradeItem targets the item in a trade window slot.
func (s *Snapshot) SetTradeItem(trader types.GUID, slot int) {
	s.Mask &^= types.TargetFlagItem
	s.item = ItemRef{IsTrade: true, Trader: trader, TradeSlot: slot}
	s.Mask |= types.TargetFlagTradeItem
}

// Item returns the live item target of either variant.
func (s *Snapshot) Item() *world.Item {
	if !s.Has(types.TargetFlagItem | types.TargetFlagTradeItem) {
		return nil
	}
	return s.item.live
}

// ItemRef exposes the item variant for callers that need the slot.
func (s *Snapshot) ItemRef() ItemRef {
	if !s.Has(types.TargetFlagItem | types.TargetFlagTradeItem) {
		return ItemRef{}
	}
	return s.item
}

// SetCorpse stores a corpse target.
func (s *Snapshot) SetCorpse(c *world.Corpse) {
	if c == nil {
		s.corpse = CorpseRef{}
		s.Mask &^= types.TargetFlagCorpse
		return
	}
	s.corpse = CorpseRef{GUID: c.GUID, live: c}
	s.Mask |= types.TargetFlagCorpse
}

func (s *Snapshot) Corpse() *world.Corpse {
	if !s.Has(types.TargetFlagCorpse | types.TargetFlagPvPCorpse) {
		return nil
	}
	return s.corpse.live
}

func (s *Snapshot) CorpseGUID() types.GUID {
	if !s.Has(types.TargetFlagCorpse | types.TargetFlagPvPCorpse) {
		return 0
	}
	return s.corpse.GUID
}

// SetSrc stores the source point.
func (s *Snapshot) SetSrc(p types.Position) {
	s.Src = p
	s.Mask |= types.TargetFlagSource
}

// SetDst stores the destination point and its map.
func (s *Snapshot) SetDst(p types.Position, mapID uint32) {
	s.Dst = p
	s.DstMap = mapID
	s.Mask |= types.TargetFlagDest
}

// SetString stores a free-text target.
func (s *Snapshot) SetString(str string) {
	s.Str = str
	s.Mask |= types.TargetFlagString
}

// Update re-resolves every live pointer from its GUID. A reference whose
// GUID no longer resolves reads back as nil; the mask is left untouched
// so callers can tell "lost" from "never set".
func (s *Snapshot) Update(r Resolver) {
	if s.Has(types.TargetFlagUnit) {
		s.unit.live = r.Unit(s.unit.GUID)
	}
	if s.Has(types.TargetFlagObject) {
		s.gobj.live = r.GameObject(s.gobj.GUID)
	}
	switch {
	case s.Has(types.TargetFlagTradeItem):
		s.item.live = r.TradeItem(s.item.Trader, s.item.TradeSlot)
	case s.Has(types.TargetFlagItem):
		s.item.live = r.Item(s.item.GUID)
	}
	if s.Has(types.TargetFlagCorpse | types.TargetFlagPvPCorpse) {
		s.corpse.live = r.Corpse(s.corpse.GUID)
	}
}
