package world

import "github.com/nathoo/spellcore/types"

// GameObject is a static or interactive world object.
type GameObject struct {
	GUID    types.GUID
	Entry   uint32
	Name    string
	Type    types.GameObjectType
	Pos     types.Position
	MapID   uint32
	FocusID uint32
	Spawned bool
	Owner   types.GUID
	Used    int
}

// Item is an inventory item that may be a cast source or target.
type Item struct {
	GUID       types.GUID
	Entry      uint32
	Name       string
	Owner      types.GUID
	Class      types.ItemClass
	Charges    int
	MaxCharges int // zero for items without charges
	Expendable bool
	Spell      uint32
	CooldownMS int
	Category   uint32
}

// Corpse is the remains of a dead player.
type Corpse struct {
	GUID  types.GUID
	Owner types.GUID
	Pos   types.Position
	MapID uint32
}
