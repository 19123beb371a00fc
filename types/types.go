// Package types defines the shared data structures for the SpellCore engine.
// This package contains only type definitions and name tables, no logic
// and no methods.
package types

// GUID is the stable identifier of any world object. Live pointers are
// always re-derived from a GUID before use.
type GUID uint64

// ObjectKind tells which directory a GUID belongs to.
type ObjectKind uint8

const (
	KindNone ObjectKind = iota
	KindPlayer
	KindCreature
	KindGameObject
	KindItem
	KindCorpse
)

// KindNames maps DSL names to the unit kinds a fixture may declare.
var KindNames = map[string]ObjectKind{
	"player":   KindPlayer,
	"creature": KindCreature,
}

// Position is a point in the world with a facing angle (radians).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	O float64 `json:"o"`
}

// Intent is the parsed representation of a console command.
type Intent struct {
	Verb   string
	Actor  string   // optional: "as <actor> ..." prefix
	Object string   // spell name, unit name, slot name
	Target string   // optional: "on <target>"
	Args   []string // trailing arguments (coordinates, milliseconds)
}

// Event is a notification emitted by the engine. Serialization is owned
// by the sink that receives it.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single console step.
type Result struct {
	Events []Event
	Output []string
}

// WorldDef holds the world-level configuration block.
type WorldDef struct {
	Title           string
	Version         string
	Author          string
	Intro           string
	Seed            int64
	MapID           uint32
	TickMS          int
	FakeDelayMS     int
	MaxVisibility   float64
	ChainJumpRadius float64
	MinGCD          int
	MaxGCD          int
	Player          string // unit that console commands act as by default
	Ground          float64
	Walls           []WallDef
	Water           []WaterDef
}

// WallDef is a vertical segment that blocks line of sight.
type WallDef struct {
	A Position
	B Position
}

// WaterDef is an axis-aligned water volume.
type WaterDef struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Level      float64
}

// UnitFlag is a bitmask of unit state bits.
type UnitFlag uint32

const (
	UnitFlagSpawning UnitFlag = 1 << iota
	UnitFlagNotPlayerSpellTarget
	UnitFlagStealthed
	UnitFlagInvisible
	UnitFlagGameMaster
	UnitFlagSanctuary
	UnitFlagInWater
	UnitFlagMounted
	UnitFlagTaxiFlying
	UnitFlagMoving
	UnitFlagFalling
	UnitFlagSeated
	UnitFlagInCombat
	UnitFlagTotem
	UnitFlagPvP
	UnitFlagIndoors
	UnitFlagInBattleground
	UnitFlagInArena
	UnitFlagInRaidInstance
	UnitFlagPet
	UnitFlagCasting
	UnitFlagCastingNotMove
	UnitFlagWaitingToLeaveBG
	UnitFlagCritter
)

// UnitFlagNames maps DSL flag names to flag bits.
var UnitFlagNames = map[string]UnitFlag{
	"spawning":             UnitFlagSpawning,
	"not_pl_spell_target":  UnitFlagNotPlayerSpellTarget,
	"stealthed":            UnitFlagStealthed,
	"invisible":            UnitFlagInvisible,
	"gm":                   UnitFlagGameMaster,
	"sanctuary":            UnitFlagSanctuary,
	"in_water":             UnitFlagInWater,
	"mounted":              UnitFlagMounted,
	"taxi":                 UnitFlagTaxiFlying,
	"moving":               UnitFlagMoving,
	"falling":              UnitFlagFalling,
	"seated":               UnitFlagSeated,
	"in_combat":            UnitFlagInCombat,
	"totem":                UnitFlagTotem,
	"pvp":                  UnitFlagPvP,
	"indoors":              UnitFlagIndoors,
	"in_battleground":      UnitFlagInBattleground,
	"in_arena":             UnitFlagInArena,
	"in_raid_instance":     UnitFlagInRaidInstance,
	"pet":                  UnitFlagPet,
	"waiting_to_leave_bg":  UnitFlagWaitingToLeaveBG,
	"critter":              UnitFlagCritter,
}

// AuraDef is an aura a unit starts with.
type AuraDef struct {
	Spell      uint32
	EffIndex   int
	Type       AuraType
	Charges    int
	Amount     int
	DurationMS int
	Caster     string // unit name, empty for self
}

// UnitDef is a unit fixture loaded from the world DSL.
type UnitDef struct {
	Name           string
	Entry          uint32
	Kind           ObjectKind
	Class          int
	Race           int
	Team           int
	Level          int
	Health         int
	MaxHealth      int
	Power          map[PowerType]int
	MaxPower       map[PowerType]int
	Pos            Position
	MapID          uint32
	AreaID         uint32
	Group          int
	SubGroup       int
	Owner          string
	Pet            string
	Charm          string
	Flags          UnitFlag
	Form           uint32
	AuraState      uint32
	CreatureType   uint32
	Auras          []AuraDef
	Items          map[uint32]int
	Home           Position
	HomeMapID      uint32
	BoundingRadius float64
	CombatReach    float64
	CastSpeed      float64
	ResistPushback int
	ComboPoints    int
}

// GameObjectType classifies game objects for range checks.
type GameObjectType uint8

const (
	GOTypeGeneric GameObjectType = iota
	GOTypeDoor
	GOTypeButton
	GOTypeChest
	GOTypeGoober
	GOTypeTrap
	GOTypeSpellFocus
)

// GameObjectTypeNames maps DSL names to game object types.
var GameObjectTypeNames = map[string]GameObjectType{
	"generic":     GOTypeGeneric,
	"door":        GOTypeDoor,
	"button":      GOTypeButton,
	"chest":       GOTypeChest,
	"goober":      GOTypeGoober,
	"trap":        GOTypeTrap,
	"spell_focus": GOTypeSpellFocus,
}

// GameObjectDef is a game object fixture.
type GameObjectDef struct {
	Name    string
	Entry   uint32
	Type    GameObjectType
	Pos     Position
	FocusID uint32
	Spawned bool
	Owner   string
}

// ItemClass is the coarse item category.
type ItemClass uint8

const (
	ItemClassGeneric ItemClass = iota
	ItemClassConsumable
	ItemClassWeapon
	ItemClassArmor
)

// ItemClassNames maps DSL names to item classes.
var ItemClassNames = map[string]ItemClass{
	"generic":    ItemClassGeneric,
	"consumable": ItemClassConsumable,
	"weapon":     ItemClassWeapon,
	"armor":      ItemClassArmor,
}

// ItemDef is an item fixture held by a unit.
type ItemDef struct {
	Name       string
	Entry      uint32
	Owner      string
	Class      ItemClass
	Charges    int
	Expendable bool
	Spell      uint32 // spell cast on use
	CooldownMS int
}

// ScriptTargetType selects what kind of entity a scripted selector wants.
type ScriptTargetType uint8

const (
	ScriptTargetGameObject ScriptTargetType = iota
	ScriptTargetCreature
	ScriptTargetDead
)

// ScriptTargetTypeNames maps DSL names to script target types.
var ScriptTargetTypeNames = map[string]ScriptTargetType{
	"gameobject": ScriptTargetGameObject,
	"creature":   ScriptTargetCreature,
	"dead":       ScriptTargetDead,
}

// ScriptTarget binds a spell to the entries its scripted selectors may hit.
type ScriptTarget struct {
	Spell uint32
	Type  ScriptTargetType
	Entry uint32
}

// TeleportPosition is the fixed destination used by the DATABASE selector.
type TeleportPosition struct {
	Spell uint32
	MapID uint32
	Pos   Position
}

// DisableMask selects which caster kinds may not use a spell.
type DisableMask uint8

const (
	DisableForPlayer DisableMask = 1 << iota
	DisableForCreature
	DisableForPet
)

// DisableNames maps DSL names to disable bits.
var DisableNames = map[string]DisableMask{
	"player":   DisableForPlayer,
	"creature": DisableForCreature,
	"pet":      DisableForPet,
}

// LinkedSpell fires when a spell with that source hits a target. A
// negative Cast removes the aura of that spell instead.
type LinkedSpell struct {
	Source uint32
	Cast   int32
}
