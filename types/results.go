package types

// CastResult is the outcome of a cast precondition check. Every value
// except CastOK is a failure reported to the caster exactly once.
type CastResult uint8

const (
	CastOK CastResult = iota
	CastFailedAffectingCombat
	CastFailedAlreadyAtFullHealth
	CastFailedAlreadyAtFullPower
	CastFailedAlreadyHaveCharm
	CastFailedAlreadyHaveSummon
	CastFailedAuraBounced
	CastFailedBadImplicitTargets
	CastFailedBadTargets
	CastFailedCantBeDisenchanted
	CastFailedCantBeProspected
	CastFailedCantCastOnTapped
	CastFailedCasterAurastate
	CastFailedCasterDead
	CastFailedCharmed
	CastFailedConfused
	CastFailedEquippedItem
	CastFailedEquippedItemClass
	CastFailedError
	CastFailedFleeing
	CastFailedFoodLowlevel
	CastFailedHighlevel
	CastFailedInterrupted
	CastFailedIntAbortSpellevent
	CastFailedIntByOtherCast
	CastFailedIntCasterJumped
	CastFailedIntCasterMoved
	CastFailedIntChannelRange
	CastFailedIntDestroySpellevent
	CastFailedIntLostTarget
	CastFailedItemGone
	CastFailedItemNotFound
	CastFailedItemNotReady
	CastFailedLineOfSight
	CastFailedLowlevel
	CastFailedLowCastlevel
	CastFailedMoving
	CastFailedNopath
	CastFailedNothingToDispel
	CastFailedNotBehind
	CastFailedNotFlying
	CastFailedNotHere
	CastFailedNotInfront
	CastFailedNotInArena
	CastFailedNotInBattleground
	CastFailedNotKnown
	CastFailedNotMounted
	CastFailedNotReady
	CastFailedNotShapeshift
	CastFailedNotTradeable
	CastFailedNoAmmo
	CastFailedNoChargesRemain
	CastFailedNoComboPoints
	CastFailedNoEdibleCorpses
	CastFailedNoMountsAllowed
	CastFailedNoPet
	CastFailedNoPower
	CastFailedOnlyAbovewater
	CastFailedOnlyBattlegrounds
	CastFailedOnlyIndoors
	CastFailedOnlyOutdoors
	CastFailedOnlyStealthed
	CastFailedOther
	CastFailedOutOfRange
	CastFailedPacified
	CastFailedProspectNeedMore
	CastFailedRequiresArea
	CastFailedRequiresSpellFocus
	CastFailedRooted
	CastFailedSilenced
	CastFailedSpellInProgress
	CastFailedSpellUnavailable
	CastFailedStunned
	CastFailedTargetAffectingCombat
	CastFailedTargetAurastate
	CastFailedTargetFriendly
	CastFailedTargetIsPlayer
	CastFailedTargetLockedToRaidInstance
	CastFailedTargetNotInInstance
	CastFailedTargetNotLooted
	CastFailedTargetNotPlayer
	CastFailedTargetUnskinnable
	CastFailedTooClose
	CastFailedTooManySkills
	CastFailedTotems
	CastFailedTotemCategory
	CastFailedTrainingPoints
	CastFailedTryAgain
	CastFailedUnitNotInfront
	CastFailedUnknown
	CastFailedWrongPetFood
	CastFailedDontReport
)

// CastResultNames maps cast results to their stable notification names.
var CastResultNames = map[CastResult]string{
	CastOK:                               "ok",
	CastFailedAffectingCombat:            "affecting_combat",
	CastFailedAlreadyAtFullHealth:        "already_at_full_health",
	CastFailedAlreadyAtFullPower:         "already_at_full_power",
	CastFailedAlreadyHaveCharm:           "already_have_charm",
	CastFailedAlreadyHaveSummon:          "already_have_summon",
	CastFailedAuraBounced:                "aura_bounced",
	CastFailedBadImplicitTargets:         "bad_implicit_targets",
	CastFailedBadTargets:                 "bad_targets",
	CastFailedCantBeDisenchanted:         "cant_be_disenchanted",
	CastFailedCantBeProspected:           "cant_be_prospected",
	CastFailedCantCastOnTapped:           "cant_cast_on_tapped",
	CastFailedCasterAurastate:            "caster_aurastate",
	CastFailedCasterDead:                 "caster_dead",
	CastFailedCharmed:                    "charmed",
	CastFailedConfused:                   "confused",
	CastFailedEquippedItem:               "equipped_item",
	CastFailedEquippedItemClass:          "equipped_item_class",
	CastFailedError:                      "error",
	CastFailedFleeing:                    "fleeing",
	CastFailedFoodLowlevel:               "food_lowlevel",
	CastFailedHighlevel:                  "highlevel",
	CastFailedInterrupted:                "interrupted",
	CastFailedIntAbortSpellevent:         "int_abort_spellevent",
	CastFailedIntByOtherCast:             "int_by_other_cast",
	CastFailedIntCasterJumped:            "int_caster_jumped",
	CastFailedIntCasterMoved:             "int_caster_moved",
	CastFailedIntChannelRange:            "int_channel_range",
	CastFailedIntDestroySpellevent:       "int_destroy_spellevent",
	CastFailedIntLostTarget:              "int_lost_target",
	CastFailedItemGone:                   "item_gone",
	CastFailedItemNotFound:               "item_not_found",
	CastFailedItemNotReady:               "item_not_ready",
	CastFailedLineOfSight:                "line_of_sight",
	CastFailedLowlevel:                   "lowlevel",
	CastFailedLowCastlevel:               "low_castlevel",
	CastFailedMoving:                     "moving",
	CastFailedNopath:                     "nopath",
	CastFailedNothingToDispel:            "nothing_to_dispel",
	CastFailedNotBehind:                  "not_behind",
	CastFailedNotFlying:                  "not_flying",
	CastFailedNotHere:                    "not_here",
	CastFailedNotInfront:                 "not_infront",
	CastFailedNotInArena:                 "not_in_arena",
	CastFailedNotInBattleground:          "not_in_battleground",
	CastFailedNotKnown:                   "not_known",
	CastFailedNotMounted:                 "not_mounted",
	CastFailedNotReady:                   "not_ready",
	CastFailedNotShapeshift:              "not_shapeshift",
	CastFailedNotTradeable:               "not_tradeable",
	CastFailedNoAmmo:                     "no_ammo",
	CastFailedNoChargesRemain:            "no_charges_remain",
	CastFailedNoComboPoints:              "no_combo_points",
	CastFailedNoEdibleCorpses:            "no_edible_corpses",
	CastFailedNoMountsAllowed:            "no_mounts_allowed",
	CastFailedNoPet:                      "no_pet",
	CastFailedNoPower:                    "no_power",
	CastFailedOnlyAbovewater:             "only_abovewater",
	CastFailedOnlyBattlegrounds:          "only_battlegrounds",
	CastFailedOnlyIndoors:                "only_indoors",
	CastFailedOnlyOutdoors:               "only_outdoors",
	CastFailedOnlyStealthed:              "only_stealthed",
	CastFailedOther:                      "other",
	CastFailedOutOfRange:                 "out_of_range",
	CastFailedPacified:                   "pacified",
	CastFailedProspectNeedMore:           "prospect_need_more",
	CastFailedRequiresArea:               "requires_area",
	CastFailedRequiresSpellFocus:         "requires_spell_focus",
	CastFailedRooted:                     "rooted",
	CastFailedSilenced:                   "silenced",
	CastFailedSpellInProgress:            "spell_in_progress",
	CastFailedSpellUnavailable:           "spell_unavailable",
	CastFailedStunned:                    "stunned",
	CastFailedTargetAffectingCombat:      "target_affecting_combat",
	CastFailedTargetAurastate:            "target_aurastate",
	CastFailedTargetFriendly:             "target_friendly",
	CastFailedTargetIsPlayer:             "target_is_player",
	CastFailedTargetLockedToRaidInstance: "target_locked_to_raid_instance",
	CastFailedTargetNotInInstance:        "target_not_in_instance",
	CastFailedTargetNotLooted:            "target_not_looted",
	CastFailedTargetNotPlayer:            "target_not_player",
	CastFailedTargetUnskinnable:          "target_unskinnable",
	CastFailedTooClose:                   "too_close",
	CastFailedTooManySkills:              "too_many_skills",
	CastFailedTotems:                     "totems",
	CastFailedTotemCategory:              "totem_category",
	CastFailedTrainingPoints:             "training_points",
	CastFailedTryAgain:                   "try_again",
	CastFailedUnitNotInfront:             "unit_not_infront",
	CastFailedUnknown:                    "unknown",
	CastFailedWrongPetFood:               "wrong_pet_food",
	CastFailedDontReport:                 "dont_report",
}
