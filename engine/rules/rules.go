// Package rules implements the cast validation pipeline: an ordered list
// of named, side-effect-free checks where the first failure wins.
package rules

import (
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/targets"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// World is the directory surface the checks read.
type World interface {
	Pet(u *world.Unit) *world.Unit
	Master(u *world.Unit) *world.Unit
	HasItemCount(u *world.Unit, entry uint32, count int) bool
	GameObjectsInRange(center types.Position, radius float64, pred func(*world.GameObject) bool) []*world.GameObject
	Cooldowns(u *world.Unit) *world.Cooldowns
}

// Sight answers line-of-sight queries.
type Sight interface {
	LineOfSight(a, b types.Position) bool
}

// Context is everything a check may look at.
type Context struct {
	Spell  *types.SpellDef
	Caster *world.Unit

	// Explicit targets, already re-resolved from the snapshot.
	Targets  *targets.Snapshot
	Target   *world.Unit
	GO       *world.GameObject
	Item     *world.Item
	CastItem *world.Item
	// HasCastItem is set when the attempt was started from an item, even
	// if the item can no longer be found.
	HasCastItem bool

	Strict          bool
	Triggered       bool
	TriggeredByAura bool
	PowerCost       int
	Now             int64

	World World
	Sight Sight
	Defs  *state.Defs
}

func (c *Context) has(a types.SpellAttr) bool { return state.HasAttr(c.Spell, a) }

func (c *Context) autoShoot() bool { return c.has(types.AttrAutoShoot) }

func (c *Context) passive() bool { return c.has(types.AttrPassive) }

// Check is one named validation step.
type Check struct {
	Name string
	Fn   func(*Context) types.CastResult
}

// castChecks is the validation order. The first failing check decides
// the cast result.
var castChecks = []Check{
	{"cooldown", checkCooldown},
	{"disabled_while_active", checkDisabledWhileActive},
	{"early_overrides", overridePhase(PhaseEarly)},
	{"global_cooldown", checkGlobalCooldown},
	{"waiting_to_leave_bg", checkLeavingBattleground},
	{"not_in_combat", checkNotInCombat},
	{"shapeshift", checkShapeshift},
	{"only_stealthed", checkOnlyStealthed},
	{"caster_aura_state", checkCasterAuraState},
	{"moving", checkMoving},
	{"outdoors", checkOutdoors},
	{"raid_instance", checkRaidInstance},
	{"unit_target", checkUnitTarget},
	{"target_overrides", overridePhase(PhaseTarget)},
	{"pet_line_of_sight", checkPetLineOfSight},
	{"cast_item_targets", checkCastItemTargets},
	{"battleground_only", checkBattlegroundOnly},
	{"arena", checkArena},
	{"area", checkArea},
	{"mounted", checkMounted},
	{"items", checkItemsStep},
	{"range", checkRangeStep},
	{"power", checkPowerStep},
	{"caster_auras", checkCasterAurasStep},
	{"effects", checkEffects},
	{"effect_overrides", overridePhase(PhaseEffect)},
	{"dest_line_of_sight", checkDestLineOfSight},
	{"combo_points", checkComboPoints},
}

// Checks returns the names of the validation steps in order.
func Checks() []string {
	out := make([]string, len(castChecks))
	for i, c := range castChecks {
		out[i] = c.Name
	}
	return out
}

// CheckCast runs the pipeline and returns the first failure, or CastOK.
func CheckCast(c *Context) types.CastResult {
	r, _ := Evaluate(c)
	return r
}

// Evaluate is CheckCast that also names the check that failed.
func Evaluate(c *Context) (types.CastResult, string) {
	for _, chk := range castChecks {
		if r := chk.Fn(c); r != types.CastOK {
			return r, chk.Name
		}
	}
	return types.CastOK, ""
}

// cooldownOwner is the player whose cooldowns gate the cast: the caster
// itself, or the player controlling it.
func cooldownOwner(c *Context) *world.Unit {
	if c.Caster.IsPlayer() {
		return c.Caster
	}
	if c.World == nil {
		return nil
	}
	if m := c.World.Master(c.Caster); m != nil && m.IsPlayer() {
		return m
	}
	return nil
}

// GCDCategory is the global cooldown category a cast locks.
func GCDCategory(caster *world.Unit, s *types.SpellDef) uint32 {
	if !caster.IsPlayer() {
		return PetGCDCategory
	}
	return s.StartRecoveryCategory
}

// HasGlobalCooldown reports whether the caster's owner is locked out of
// the spell's start-recovery category.
func HasGlobalCooldown(c *Context) bool {
	owner := cooldownOwner(c)
	if owner == nil {
		return false
	}
	return c.World.Cooldowns(owner).HasGlobal(GCDCategory(c.Caster, c.Spell), c.Now)
}

// HasAuraState tests one aura-state bit. State numbers start at 1.
func HasAuraState(u *world.Unit, st uint32) bool {
	if st == 0 || st > 32 {
		return false
	}
	return u.AuraState&(1<<(st-1)) != 0
}
