// Package selector is the pure-data table behind target resolution: for
// every target code it gives the resolution category and the search
// polarity, and for every effect type the kind of target it requires.
package selector

import "github.com/nathoo/spellcore/types"

// Category picks the resolution branch for a target code.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryUnitCaster
	CategoryUnitTarget
	CategoryUnitNearby
	CategoryAreaSrc
	CategoryAreaDst
	CategoryAreaCone
	CategoryDestCaster
	CategoryDestTarget
	CategoryDestDest
	CategoryDestSpecial
	CategoryChannel
	CategoryGameObject
)

var categoryNames = [...]string{
	"none", "unit_caster", "unit_target", "unit_nearby", "area_src", "area_dst",
	"area_cone", "dest_caster", "dest_target", "dest_dest", "dest_special",
	"channel", "gameobject",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Kind is the polarity of a search.
type Kind uint8

const (
	KindNone Kind = iota
	KindEnemy
	KindAlly
	KindParty
	KindRaid
	KindEntry
	KindGOEntry
	KindChainHeal
)

// Entry is one row of the target table.
type Entry struct {
	Category Category
	Kind     Kind
}

// Requirement is what an effect type needs as its target.
type Requirement uint8

const (
	RequireUnit Requirement = iota
	RequireNone
	RequireCaster
	RequireItem
	RequireDest
)

var table = map[types.Target]Entry{
	types.TargetUnitCaster:             {CategoryUnitCaster, KindNone},
	types.TargetCasterMaster:           {CategoryUnitCaster, KindNone},
	types.TargetCasterPet:              {CategoryUnitCaster, KindNone},
	types.TargetFishingSpot:            {CategoryUnitCaster, KindNone},
	types.TargetPartyWithinCasterRange: {CategoryUnitCaster, KindParty},
	types.TargetRaidWithinCasterRange:  {CategoryUnitCaster, KindRaid},

	types.TargetUnitEnemy:       {CategoryUnitTarget, KindEnemy},
	types.TargetChainHeal:       {CategoryUnitTarget, KindChainHeal},
	types.TargetTargetUnit:      {CategoryUnitTarget, KindNone},
	types.TargetUnitFriend:      {CategoryUnitTarget, KindAlly},
	types.TargetUnitRaid:        {CategoryUnitTarget, KindRaid},
	types.TargetUnitParty:       {CategoryUnitTarget, KindParty},
	types.TargetCasterCompanion: {CategoryUnitTarget, KindNone},
	types.TargetFriendAndParty:  {CategoryUnitTarget, KindParty},
	types.TargetRaidAndClass:    {CategoryUnitTarget, KindRaid},

	types.TargetEnemyNearCaster:    {CategoryUnitNearby, KindEnemy},
	types.TargetFriendNearCaster:   {CategoryUnitNearby, KindAlly},
	types.TargetNearCaster:         {CategoryUnitNearby, KindAlly},
	types.TargetRaidNearCaster:     {CategoryUnitNearby, KindAlly},
	types.TargetScriptNearCaster:   {CategoryUnitNearby, KindEntry},
	types.TargetGOScriptNearCaster: {CategoryUnitNearby, KindGOEntry},

	types.TargetEnemyAoeSrc:    {CategoryAreaSrc, KindEnemy},
	types.TargetFriendAoeSrc:   {CategoryAreaSrc, KindAlly},
	types.TargetPartyAoeSrc:    {CategoryAreaSrc, KindParty},
	types.TargetScriptAoeSrc:   {CategoryAreaSrc, KindEntry},
	types.TargetGOScriptAoeSrc: {CategoryAreaSrc, KindGOEntry},

	types.TargetEnemyAoeDst:    {CategoryAreaDst, KindEnemy},
	types.TargetFriendAoeDst:   {CategoryAreaDst, KindAlly},
	types.TargetPartyAoeDst:    {CategoryAreaDst, KindParty},
	types.TargetScriptAoeDst:   {CategoryAreaDst, KindEntry},
	types.TargetGOScriptAoeDst: {CategoryAreaDst, KindGOEntry},

	types.TargetEnemyCone24:  {CategoryAreaCone, KindEnemy},
	types.TargetEnemyCone54:  {CategoryAreaCone, KindEnemy},
	types.TargetFriendCone:   {CategoryAreaCone, KindAlly},
	types.TargetScriptCone60: {CategoryAreaCone, KindEntry},

	types.TargetCasterSrc:        {CategoryDestCaster, KindNone},
	types.TargetCasterDest:       {CategoryDestCaster, KindNone},
	types.TargetCasterFrontRight: {CategoryDestCaster, KindNone},
	types.TargetCasterBackRight:  {CategoryDestCaster, KindNone},
	types.TargetCasterBackLeft:   {CategoryDestCaster, KindNone},
	types.TargetCasterFrontLeft:  {CategoryDestCaster, KindNone},
	types.TargetCasterFront:      {CategoryDestCaster, KindNone},
	types.TargetCasterBack:       {CategoryDestCaster, KindNone},
	types.TargetCasterLeft:       {CategoryDestCaster, KindNone},
	types.TargetCasterRight:      {CategoryDestCaster, KindNone},
	types.TargetMinionPosition:   {CategoryDestCaster, KindNone},
	types.TargetCasterRandomSide: {CategoryDestCaster, KindNone},

	types.TargetCasterTargetPosition: {CategoryDestTarget, KindNone},
	types.TargetUnitPosition:         {CategoryDestTarget, KindNone},
	types.TargetUnitFront:            {CategoryDestTarget, KindNone},
	types.TargetUnitBack:             {CategoryDestTarget, KindNone},
	types.TargetUnitRight:            {CategoryDestTarget, KindNone},
	types.TargetUnitLeft:             {CategoryDestTarget, KindNone},
	types.TargetUnitFrontRight:       {CategoryDestTarget, KindNone},
	types.TargetUnitBackRight:        {CategoryDestTarget, KindNone},
	types.TargetUnitBackLeft:         {CategoryDestTarget, KindNone},
	types.TargetUnitFrontLeft:        {CategoryDestTarget, KindNone},
	types.TargetUnitRandom:           {CategoryDestTarget, KindNone},

	types.TargetDynobjEnemy:      {CategoryDestDest, KindEnemy},
	types.TargetDynobjAlly:       {CategoryDestDest, KindAlly},
	types.TargetCurrentReference: {CategoryDestDest, KindNone},
	types.TargetTrajectory:       {CategoryDestDest, KindNone},
	types.TargetDestNorth:        {CategoryDestDest, KindNone},
	types.TargetDestSouth:        {CategoryDestDest, KindNone},
	types.TargetDestEast:         {CategoryDestDest, KindNone},
	types.TargetDestWest:         {CategoryDestDest, KindNone},
	types.TargetDestNorthEast:    {CategoryDestDest, KindNone},
	types.TargetDestNorthWest:    {CategoryDestDest, KindNone},
	types.TargetDestSouthEast:    {CategoryDestDest, KindNone},
	types.TargetDestSouthWest:    {CategoryDestDest, KindNone},
	types.TargetDestRandomSide:   {CategoryDestDest, KindNone},

	types.TargetDatabase:            {CategoryDestSpecial, KindNone},
	types.TargetHomeBind:            {CategoryDestSpecial, KindNone},
	types.TargetLocScriptNearCaster: {CategoryDestSpecial, KindEntry},

	types.TargetChannelTarget:     {CategoryChannel, KindNone},
	types.TargetChannelTargetDest: {CategoryChannel, KindNone},

	types.TargetGameObject: {CategoryGameObject, KindNone},
	types.TargetLocked:     {CategoryGameObject, KindNone},
}

var requirements = map[types.EffectType]Requirement{
	types.EffectNone:               RequireNone,
	types.EffectSendEvent:          RequireNone,
	types.EffectSummon:             RequireCaster,
	types.EffectEnchantItem:        RequireItem,
	types.EffectDisenchant:         RequireItem,
	types.EffectFeedPet:            RequireItem,
	types.EffectTriggerMissile:     RequireDest,
	types.EffectPersistentAreaAura: RequireDest,
	types.EffectTransDoor:          RequireDest,
}

// Lookup returns the table row for a target code.
func Lookup(t types.Target) (Entry, bool) {
	e, ok := table[t]
	return e, ok
}

// RequirementOf returns the target requirement of an effect type. Types
// absent from the table require a unit.
func RequirementOf(t types.EffectType) Requirement {
	if r, ok := requirements[t]; ok {
		return r
	}
	return RequireUnit
}

// IsAreaTarget reports codes that resolve through an area search.
func IsAreaTarget(t types.Target) bool {
	e, ok := table[t]
	if !ok {
		return false
	}
	switch e.Category {
	case CategoryAreaSrc, CategoryAreaDst, CategoryAreaCone:
		return true
	}
	return false
}

// NeedsUnitTarget reports codes that read the explicit unit target.
func NeedsUnitTarget(t types.Target) bool {
	e, ok := table[t]
	return ok && (e.Category == CategoryUnitTarget || e.Category == CategoryDestTarget)
}
