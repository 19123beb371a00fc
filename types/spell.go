package types

// MaxEffectIndex is the number of effect slots a spell carries.
const MaxEffectIndex = 3

// SpellState is the lifecycle position of a cast attempt.
type SpellState string

const (
	StateNull      SpellState = "null"
	StatePreparing SpellState = "preparing"
	StateCasting   SpellState = "casting"
	StateDelayed   SpellState = "delayed"
	StateFinished  SpellState = "finished"
)

// SlotType names one of the per-caster current-spell slots.
type SlotType int

const (
	SlotGeneric SlotType = iota
	SlotMelee
	SlotAutorepeat
	SlotChanneled
	MaxSlots
)

// SlotNames maps console names to slots.
var SlotNames = map[string]SlotType{
	"generic":    SlotGeneric,
	"melee":      SlotMelee,
	"autorepeat": SlotAutorepeat,
	"channeled":  SlotChanneled,
}

// TargetFlag is the cast target snapshot mask.
type TargetFlag uint32

const (
	TargetFlagSelf       TargetFlag = 0
	TargetFlagUnit       TargetFlag = 0x0002
	TargetFlagItem       TargetFlag = 0x0010
	TargetFlagSource     TargetFlag = 0x0020
	TargetFlagDest       TargetFlag = 0x0040
	TargetFlagObject     TargetFlag = 0x0800
	TargetFlagTradeItem  TargetFlag = 0x1000
	TargetFlagString     TargetFlag = 0x2000
	TargetFlagCorpse     TargetFlag = 0x8000
	TargetFlagPvPCorpse  TargetFlag = 0x0200
	TargetFlagUnitEnemy  TargetFlag = 0x0080
	TargetFlagUnitFriend TargetFlag = 0x0100
)

// TargetFlagNames maps DSL names to required target flags.
var TargetFlagNames = map[string]TargetFlag{
	"unit":        TargetFlagUnit,
	"item":        TargetFlagItem,
	"source":      TargetFlagSource,
	"dest":        TargetFlagDest,
	"object":      TargetFlagObject,
	"trade_item":  TargetFlagTradeItem,
	"string":      TargetFlagString,
	"corpse":      TargetFlagCorpse,
	"pvp_corpse":  TargetFlagPvPCorpse,
	"unit_enemy":  TargetFlagUnitEnemy,
	"unit_friend": TargetFlagUnitFriend,
}

// Target is a target selector code used in effect TargetA/TargetB.
type Target uint32

const (
	TargetNone                   Target = 0
	TargetUnitCaster             Target = 1
	TargetEnemyNearCaster        Target = 2
	TargetFriendNearCaster       Target = 3
	TargetNearCaster             Target = 4
	TargetCasterPet              Target = 5
	TargetUnitEnemy              Target = 6
	TargetScriptAoeSrc           Target = 7
	TargetScriptAoeDst           Target = 8
	TargetHomeBind               Target = 9
	TargetEnemyAoeSrc            Target = 15
	TargetEnemyAoeDst            Target = 16
	TargetDatabase               Target = 17
	TargetCasterDest             Target = 18
	TargetPartyWithinCasterRange Target = 20
	TargetUnitFriend             Target = 21
	TargetCasterSrc              Target = 22
	TargetGameObject             Target = 23
	TargetEnemyCone24            Target = 24
	TargetTargetUnit             Target = 25
	TargetLocked                 Target = 26
	TargetCasterMaster           Target = 27
	TargetDynobjEnemy            Target = 28
	TargetDynobjAlly             Target = 29
	TargetFriendAoeSrc           Target = 30
	TargetFriendAoeDst           Target = 31
	TargetMinionPosition         Target = 32
	TargetPartyAoeSrc            Target = 33
	TargetPartyAoeDst            Target = 34
	TargetUnitParty              Target = 35
	TargetFriendAndParty         Target = 37
	TargetScriptNearCaster       Target = 38
	TargetFishingSpot            Target = 39
	TargetGOScriptNearCaster     Target = 40
	TargetCasterFrontRight       Target = 41
	TargetCasterBackRight        Target = 42
	TargetCasterBackLeft         Target = 43
	TargetCasterFrontLeft        Target = 44
	TargetChainHeal              Target = 45
	TargetLocScriptNearCaster    Target = 46
	TargetCasterFront            Target = 47
	TargetCasterBack             Target = 48
	TargetCasterLeft             Target = 49
	TargetCasterRight            Target = 50
	TargetGOScriptAoeSrc         Target = 51
	TargetGOScriptAoeDst         Target = 52
	TargetCasterTargetPosition   Target = 53
	TargetEnemyCone54            Target = 54
	TargetRaidWithinCasterRange  Target = 56
	TargetUnitRaid               Target = 57
	TargetRaidNearCaster         Target = 58
	TargetFriendCone             Target = 59
	TargetScriptCone60           Target = 60
	TargetRaidAndClass           Target = 61
	TargetUnitPosition           Target = 63
	TargetUnitFront              Target = 64
	TargetUnitBack               Target = 65
	TargetUnitRight              Target = 66
	TargetUnitLeft               Target = 67
	TargetUnitFrontRight         Target = 68
	TargetUnitBackRight          Target = 69
	TargetUnitBackLeft           Target = 70
	TargetUnitFrontLeft          Target = 71
	TargetCasterRandomSide       Target = 72
	TargetUnitRandom             Target = 74
	TargetChannelTargetDest      Target = 76
	TargetChannelTarget          Target = 77
	TargetDestNorth              Target = 78
	TargetDestSouth              Target = 79
	TargetDestEast               Target = 80
	TargetDestWest               Target = 81
	TargetDestNorthEast          Target = 82
	TargetDestNorthWest          Target = 83
	TargetDestSouthEast          Target = 84
	TargetDestSouthWest          Target = 85
	TargetDestRandomSide         Target = 86
	TargetCurrentReference       Target = 87
	TargetTrajectory             Target = 89
	TargetCasterCompanion        Target = 90
)

// TargetNames maps DSL selector names to codes.
var TargetNames = map[string]Target{
	"unit_caster":               TargetUnitCaster,
	"enemy_near_caster":         TargetEnemyNearCaster,
	"friend_near_caster":        TargetFriendNearCaster,
	"near_caster":               TargetNearCaster,
	"caster_pet":                TargetCasterPet,
	"unit_enemy":                TargetUnitEnemy,
	"script_aoe_src":            TargetScriptAoeSrc,
	"script_aoe_dst":            TargetScriptAoeDst,
	"home_bind":                 TargetHomeBind,
	"enemy_aoe_src":             TargetEnemyAoeSrc,
	"enemy_aoe_dst":             TargetEnemyAoeDst,
	"database":                  TargetDatabase,
	"caster_dest":               TargetCasterDest,
	"party_within_caster_range": TargetPartyWithinCasterRange,
	"unit_friend":               TargetUnitFriend,
	"caster_src":                TargetCasterSrc,
	"gameobject":                TargetGameObject,
	"enemy_cone_24":             TargetEnemyCone24,
	"target_unit":               TargetTargetUnit,
	"locked":                    TargetLocked,
	"caster_master":             TargetCasterMaster,
	"dynobj_enemy":              TargetDynobjEnemy,
	"dynobj_ally":               TargetDynobjAlly,
	"friend_aoe_src":            TargetFriendAoeSrc,
	"friend_aoe_dst":            TargetFriendAoeDst,
	"minion_position":           TargetMinionPosition,
	"party_aoe_src":             TargetPartyAoeSrc,
	"party_aoe_dst":             TargetPartyAoeDst,
	"unit_party":                TargetUnitParty,
	"friend_and_party":          TargetFriendAndParty,
	"script_near_caster":        TargetScriptNearCaster,
	"fishing_spot":              TargetFishingSpot,
	"go_script_near_caster":     TargetGOScriptNearCaster,
	"caster_front_right":        TargetCasterFrontRight,
	"caster_back_right":         TargetCasterBackRight,
	"caster_back_left":          TargetCasterBackLeft,
	"caster_front_left":         TargetCasterFrontLeft,
	"chain_heal":                TargetChainHeal,
	"loc_script_near_caster":    TargetLocScriptNearCaster,
	"caster_front":              TargetCasterFront,
	"caster_back":               TargetCasterBack,
	"caster_left":               TargetCasterLeft,
	"caster_right":              TargetCasterRight,
	"go_script_aoe_src":         TargetGOScriptAoeSrc,
	"go_script_aoe_dst":         TargetGOScriptAoeDst,
	"caster_target_position":    TargetCasterTargetPosition,
	"enemy_cone_54":             TargetEnemyCone54,
	"raid_within_caster_range":  TargetRaidWithinCasterRange,
	"unit_raid":                 TargetUnitRaid,
	"raid_near_caster":          TargetRaidNearCaster,
	"friend_cone":               TargetFriendCone,
	"script_cone_60":            TargetScriptCone60,
	"raid_and_class":            TargetRaidAndClass,
	"unit_position":             TargetUnitPosition,
	"unit_front":                TargetUnitFront,
	"unit_back":                 TargetUnitBack,
	"unit_right":                TargetUnitRight,
	"unit_left":                 TargetUnitLeft,
	"unit_front_right":          TargetUnitFrontRight,
	"unit_back_right":           TargetUnitBackRight,
	"unit_back_left":            TargetUnitBackLeft,
	"unit_front_left":           TargetUnitFrontLeft,
	"caster_random_side":        TargetCasterRandomSide,
	"unit_random":               TargetUnitRandom,
	"channel_target_dest":       TargetChannelTargetDest,
	"channel_target":            TargetChannelTarget,
	"dest_north":                TargetDestNorth,
	"dest_south":                TargetDestSouth,
	"dest_east":                 TargetDestEast,
	"dest_west":                 TargetDestWest,
	"dest_north_east":           TargetDestNorthEast,
	"dest_north_west":           TargetDestNorthWest,
	"dest_south_east":           TargetDestSouthEast,
	"dest_south_west":           TargetDestSouthWest,
	"dest_random_side":          TargetDestRandomSide,
	"current_reference":         TargetCurrentReference,
	"trajectory":                TargetTrajectory,
	"caster_companion":          TargetCasterCompanion,
}

// EffectType is the kind of a spell effect slot.
type EffectType uint32

const (
	EffectNone EffectType = iota
	EffectInstakill
	EffectSchoolDamage
	EffectDummy
	EffectTeleportUnits
	EffectApplyAura
	EffectEnvironmentalDamage
	EffectPowerDrain
	EffectHealthLeech
	EffectHeal
	EffectResurrect
	EffectResurrectNew
	EffectAddExtraAttacks
	EffectCreateItem
	EffectEnergize
	EffectApplyAreaAuraParty
	EffectLearnSpell
	EffectLearnPetSpell
	EffectDispel
	EffectTriggerSpell
	EffectTriggerMissile
	EffectSendEvent
	EffectSummonPlayer
	EffectSendTaxi
	EffectSkinPlayerCorpse
	EffectSelfResurrect
	EffectReputation
	EffectSkillStep
	EffectStuck
	EffectDestroyAllTotems
	EffectFriendSummon
	EffectSummonChangeItem
	EffectAddFarsight
	EffectTransDoor
	EffectPersistentAreaAura
	EffectWeaponDamage
	EffectThreat
	EffectAttackMe
	EffectOpenLock
	EffectSummon
	EffectScriptEffect
	EffectInterruptCast
	EffectKnockBack
	EffectCharge
	EffectEnchantItem
	EffectDisenchant
	EffectFeedPet
)

// EffectNames maps DSL effect names to effect types.
var EffectNames = map[string]EffectType{
	"instakill":             EffectInstakill,
	"school_damage":         EffectSchoolDamage,
	"dummy":                 EffectDummy,
	"teleport_units":        EffectTeleportUnits,
	"apply_aura":            EffectApplyAura,
	"environmental_damage":  EffectEnvironmentalDamage,
	"power_drain":           EffectPowerDrain,
	"health_leech":          EffectHealthLeech,
	"heal":                  EffectHeal,
	"resurrect":             EffectResurrect,
	"resurrect_new":         EffectResurrectNew,
	"add_extra_attacks":     EffectAddExtraAttacks,
	"create_item":           EffectCreateItem,
	"energize":              EffectEnergize,
	"apply_area_aura_party": EffectApplyAreaAuraParty,
	"learn_spell":           EffectLearnSpell,
	"learn_pet_spell":       EffectLearnPetSpell,
	"dispel":                EffectDispel,
	"trigger_spell":         EffectTriggerSpell,
	"trigger_missile":       EffectTriggerMissile,
	"send_event":            EffectSendEvent,
	"summon_player":         EffectSummonPlayer,
	"send_taxi":             EffectSendTaxi,
	"skin_player_corpse":    EffectSkinPlayerCorpse,
	"self_resurrect":        EffectSelfResurrect,
	"reputation":            EffectReputation,
	"skill_step":            EffectSkillStep,
	"stuck":                 EffectStuck,
	"destroy_all_totems":    EffectDestroyAllTotems,
	"friend_summon":         EffectFriendSummon,
	"summon_change_item":    EffectSummonChangeItem,
	"add_farsight":          EffectAddFarsight,
	"trans_door":            EffectTransDoor,
	"persistent_area_aura":  EffectPersistentAreaAura,
	"weapon_damage":         EffectWeaponDamage,
	"threat":                EffectThreat,
	"attack_me":             EffectAttackMe,
	"open_lock":             EffectOpenLock,
	"summon":                EffectSummon,
	"script_effect":         EffectScriptEffect,
	"interrupt_cast":        EffectInterruptCast,
	"knock_back":            EffectKnockBack,
	"charge":                EffectCharge,
	"enchant_item":          EffectEnchantItem,
	"disenchant":            EffectDisenchant,
	"feed_pet":              EffectFeedPet,
}

// AuraType is the modifier an aura effect installs.
type AuraType uint32

const (
	AuraNone AuraType = iota
	AuraDummy
	AuraPeriodicDamage
	AuraPeriodicHeal
	AuraPeriodicLeech
	AuraPeriodicDamagePercent
	AuraModStun
	AuraModConfuse
	AuraModFear
	AuraModRoot
	AuraModStealth
	AuraModInvisibility
	AuraModSilence
	AuraModPacify
	AuraModShapeshift
	AuraSpellMagnet
	AuraAddCasterHitTrigger
	AuraReflectSpells
	AuraResistPushback
	AuraAddFlatModifier
	AuraAddPctModifier
	AuraMechanicImmunity
	AuraSchoolImmunity
	AuraModTaunt
)

// AuraNames maps DSL aura names to aura types.
var AuraNames = map[string]AuraType{
	"dummy":                  AuraDummy,
	"periodic_damage":        AuraPeriodicDamage,
	"periodic_heal":          AuraPeriodicHeal,
	"periodic_leech":         AuraPeriodicLeech,
	"periodic_damage_pct":    AuraPeriodicDamagePercent,
	"mod_stun":               AuraModStun,
	"mod_confuse":            AuraModConfuse,
	"mod_fear":               AuraModFear,
	"mod_root":               AuraModRoot,
	"mod_stealth":            AuraModStealth,
	"mod_invisibility":       AuraModInvisibility,
	"mod_silence":            AuraModSilence,
	"mod_pacify":             AuraModPacify,
	"mod_shapeshift":         AuraModShapeshift,
	"spell_magnet":           AuraSpellMagnet,
	"add_caster_hit_trigger": AuraAddCasterHitTrigger,
	"reflect_spells":         AuraReflectSpells,
	"resist_pushback":        AuraResistPushback,
	"add_flat_modifier":      AuraAddFlatModifier,
	"add_pct_modifier":       AuraAddPctModifier,
	"mechanic_immunity":      AuraMechanicImmunity,
	"school_immunity":        AuraSchoolImmunity,
	"mod_taunt":              AuraModTaunt,
}

// Mechanic is the control category of an effect, used for immunity.
type Mechanic uint32

const (
	MechanicNone Mechanic = iota
	MechanicCharm
	MechanicDisoriented
	MechanicDisarm
	MechanicDistract
	MechanicFear
	MechanicRoot
	MechanicSilence
	MechanicSleep
	MechanicSnare
	MechanicStun
	MechanicFreeze
	MechanicKnockout
	MechanicBleed
	MechanicPolymorph
	MechanicBanish
	MechanicShield
	MechanicShackle
	MechanicHorror
	MechanicInvulnerability
)

// MechanicNames maps DSL names to mechanics.
var MechanicNames = map[string]Mechanic{
	"charm":           MechanicCharm,
	"disoriented":     MechanicDisoriented,
	"disarm":          MechanicDisarm,
	"distract":        MechanicDistract,
	"fear":            MechanicFear,
	"root":            MechanicRoot,
	"silence":         MechanicSilence,
	"sleep":           MechanicSleep,
	"snare":           MechanicSnare,
	"stun":            MechanicStun,
	"freeze":          MechanicFreeze,
	"knockout":        MechanicKnockout,
	"bleed":           MechanicBleed,
	"polymorph":       MechanicPolymorph,
	"banish":          MechanicBanish,
	"shield":          MechanicShield,
	"shackle":         MechanicShackle,
	"horror":          MechanicHorror,
	"invulnerability": MechanicInvulnerability,
}

// SpellMissInfo is the hit outcome of one spell against one target.
type SpellMissInfo uint8

const (
	MissNone SpellMissInfo = iota
	MissMiss
	MissResist
	MissDodge
	MissParry
	MissBlock
	MissEvade
	MissImmune
	MissImmune2
	MissDeflect
	MissAbsorb
	MissReflect
)

// MissNames is used for notifications and the Lua combat scripts.
var MissNames = map[SpellMissInfo]string{
	MissNone:    "none",
	MissMiss:    "miss",
	MissResist:  "resist",
	MissDodge:   "dodge",
	MissParry:   "parry",
	MissBlock:   "block",
	MissEvade:   "evade",
	MissImmune:  "immune",
	MissImmune2: "immune2",
	MissDeflect: "deflect",
	MissAbsorb:  "absorb",
	MissReflect: "reflect",
}

// PowerType is the resource a spell consumes.
type PowerType int

const (
	PowerMana PowerType = iota
	PowerRage
	PowerFocus
	PowerEnergy
	PowerHappiness
	MaxPowers

	PowerHealth PowerType = 0xFE
)

// PowerNames maps DSL names to power types.
var PowerNames = map[string]PowerType{
	"mana":      PowerMana,
	"rage":      PowerRage,
	"focus":     PowerFocus,
	"energy":    PowerEnergy,
	"happiness": PowerHappiness,
	"health":    PowerHealth,
}

// DamageClass separates magic from weapon spells.
type DamageClass uint8

const (
	DamageClassNone DamageClass = iota
	DamageClassMagic
	DamageClassMelee
	DamageClassRanged
)

// DamageClassNames maps DSL names to damage classes.
var DamageClassNames = map[string]DamageClass{
	"none":   DamageClassNone,
	"magic":  DamageClassMagic,
	"melee":  DamageClassMelee,
	"ranged": DamageClassRanged,
}

// RangeType selects how a range check measures distance.
type RangeType uint8

const (
	RangeDefault RangeType = iota
	RangeMelee
	RangeRanged
)

// RangeTypeNames maps DSL names to range types.
var RangeTypeNames = map[string]RangeType{
	"default": RangeDefault,
	"melee":   RangeMelee,
	"ranged":  RangeRanged,
}

// PreventionType selects which caster auras block the cast.
type PreventionType uint8

const (
	PreventionNone PreventionType = iota
	PreventionSilence
	PreventionPacify
)

// PreventionNames maps DSL names to prevention types.
var PreventionNames = map[string]PreventionType{
	"none":    PreventionNone,
	"silence": PreventionSilence,
	"pacify":  PreventionPacify,
}

// School is a spell school index.
type School uint8

const (
	SchoolPhysical School = iota
	SchoolHoly
	SchoolFire
	SchoolNature
	SchoolFrost
	SchoolShadow
	SchoolArcane
)

// SchoolNames maps DSL names to schools.
var SchoolNames = map[string]School{
	"physical": SchoolPhysical,
	"holy":     SchoolHoly,
	"fire":     SchoolFire,
	"nature":   SchoolNature,
	"frost":    SchoolFrost,
	"shadow":   SchoolShadow,
	"arcane":   SchoolArcane,
}

// SpellAttr is the set of behaviour flags on a spell definition.
type SpellAttr uint64

const (
	AttrPassive SpellAttr = 1 << iota
	AttrChanneled
	AttrAutorepeat
	AttrNextMeleeSwing
	AttrOutdoorsOnly
	AttrNotInCombat
	AttrStopAttackTarget
	AttrUnaffectedByInvulnerability
	AttrAbility
	AttrCantTargetSelf
	AttrPlayersOnly
	AttrIgnoreLOS
	AttrFakeDelay
	AttrBreaksStealth
	AttrDisabledWhileActive
	AttrCantBeRedirected
	AttrCantTargetCCd
	AttrConeBack
	AttrConeLine
	AttrFromBehind
	AttrNoInitialAggro
	AttrPositive
	AttrNegative
	AttrDeathOnly
	AttrCantBeReflected
	AttrResetMeleeTimer
	AttrNotResetAutoshot
	AttrUsableWhileStunned
	AttrNotInRaidInstance
	AttrBattlegroundOnly
	AttrNotInArena
	AttrOnlyStealthed
	AttrCastableWhileMounted
	AttrTargetNotInCombat
	AttrAutoShoot
	AttrFacingFront
	AttrDestLocation
	AttrCastableWhileSitting
	AttrIgnoreCasterAuras
	AttrHealthFunnel
	AttrDrainSoul
	AttrCanTargetNotInLOS
	AttrReqComboPoints
)

// AttrNames maps DSL attribute names to flags.
var AttrNames = map[string]SpellAttr{
	"passive":                       AttrPassive,
	"channeled":                     AttrChanneled,
	"autorepeat":                    AttrAutorepeat,
	"next_melee_swing":              AttrNextMeleeSwing,
	"outdoors_only":                 AttrOutdoorsOnly,
	"not_in_combat":                 AttrNotInCombat,
	"stop_attack_target":            AttrStopAttackTarget,
	"unaffected_by_invulnerability": AttrUnaffectedByInvulnerability,
	"ability":                       AttrAbility,
	"cant_target_self":              AttrCantTargetSelf,
	"players_only":                  AttrPlayersOnly,
	"ignore_los":                    AttrIgnoreLOS,
	"fake_delay":                    AttrFakeDelay,
	"breaks_stealth":                AttrBreaksStealth,
	"disabled_while_active":         AttrDisabledWhileActive,
	"cant_be_redirected":            AttrCantBeRedirected,
	"cant_target_ccd":               AttrCantTargetCCd,
	"cone_back":                     AttrConeBack,
	"cone_line":                     AttrConeLine,
	"from_behind":                   AttrFromBehind,
	"no_initial_aggro":              AttrNoInitialAggro,
	"positive":                      AttrPositive,
	"negative":                      AttrNegative,
	"death_only":                    AttrDeathOnly,
	"cant_be_reflected":             AttrCantBeReflected,
	"reset_melee_timer":             AttrResetMeleeTimer,
	"not_reset_autoshot":            AttrNotResetAutoshot,
	"usable_while_stunned":          AttrUsableWhileStunned,
	"not_in_raid_instance":          AttrNotInRaidInstance,
	"battleground_only":             AttrBattlegroundOnly,
	"not_in_arena":                  AttrNotInArena,
	"only_stealthed":                AttrOnlyStealthed,
	"castable_while_mounted":        AttrCastableWhileMounted,
	"target_not_in_combat":          AttrTargetNotInCombat,
	"auto_shoot":                    AttrAutoShoot,
	"facing_front":                  AttrFacingFront,
	"dest_location":                 AttrDestLocation,
	"castable_while_sitting":        AttrCastableWhileSitting,
	"ignore_caster_auras":           AttrIgnoreCasterAuras,
	"health_funnel":                 AttrHealthFunnel,
	"drain_soul":                    AttrDrainSoul,
	"can_target_not_in_los":         AttrCanTargetNotInLOS,
	"req_combo_points":              AttrReqComboPoints,
}

// Interrupt flags for the preparing phase.
const (
	InterruptMovement uint32 = 0x01
	InterruptPushBack uint32 = 0x02
	InterruptDamage   uint32 = 0x08
)

// InterruptNames maps DSL names to preparing interrupt flags.
var InterruptNames = map[string]uint32{
	"movement": InterruptMovement,
	"pushback": InterruptPushBack,
	"damage":   InterruptDamage,
}

// Channel interrupt flags.
const (
	ChannelInterruptDamage   uint32 = 0x0002
	ChannelInterruptMovement uint32 = 0x0008
	ChannelInterruptTurning  uint32 = 0x0010
	ChannelInterruptDelay    uint32 = 0x4000
)

// ChannelInterruptNames maps DSL names to channel interrupt flags.
var ChannelInterruptNames = map[string]uint32{
	"damage":   ChannelInterruptDamage,
	"movement": ChannelInterruptMovement,
	"turning":  ChannelInterruptTurning,
	"delay":    ChannelInterruptDelay,
}

// Legacy attribute words some target rules still test as raw values.
const (
	LegacyAttrPartyAuraPersist uint32 = 0x9050000
	LegacyAttrPartyAuraPet     uint32 = 0x10000
)

// Range describes the distance limits of a spell.
type Range struct {
	Min  float64
	Max  float64
	Type RangeType
}

// Reagent is an item count consumed by a cast.
type Reagent struct {
	Item  uint32
	Count int
}

// ChanceTrigger casts Spell on a first-effect target with Chance percent.
type ChanceTrigger struct {
	Spell  uint32
	Chance float64
}

// EffectDef is one of the three effect slots of a spell.
type EffectDef struct {
	Type         EffectType
	TargetA      Target
	TargetB      Target
	Radius       float64
	ChainTargets int
	BasePoints   int
	DieSides     int
	Aura         AuraType
	MiscValue    int
	TriggerSpell uint32
	Mechanic     Mechanic
	AmplitudeMS  int
	Polarity     int8 // 1 positive, -1 negative, 0 derive from spell
}

// SpellDef is an immutable spell definition loaded from the world DSL.
type SpellDef struct {
	ID                     uint32
	Name                   string
	School                 School
	DmgClass               DamageClass
	Flags                  SpellAttr
	LegacyAttributes       uint32
	CastTimeMS             int
	DurationMS             int
	Speed                  float64
	Range                  Range
	PowerType              PowerType
	PowerCost              int
	PowerCostPct           int
	Reagents               []Reagent
	RequiresSpellFocus     uint32
	Level                  int
	MaxAffectedTargets     int
	Category               uint32
	RecoveryTimeMS         int
	CategoryRecoveryTimeMS int
	StartRecoveryTimeMS    int
	StartRecoveryCategory  uint32
	InterruptFlags         uint32
	ChannelInterruptFlags  uint32
	PreventionType         PreventionType
	CasterAuraState        uint32
	CasterAuraStateNot     uint32
	TargetAuraState        uint32
	TargetAuraStateNot     uint32
	Stances                uint32
	StancesNot             uint32
	TargetCreatureType     uint32
	AreaID                 uint32
	Family                 uint32
	FamilyFlags            uint64
	RequiredTargetFlags    TargetFlag
	Effects                [MaxEffectIndex]EffectDef
	LinkedOnHit            []int32
	TriggerChance          []ChanceTrigger
	Disabled               DisableMask
}
