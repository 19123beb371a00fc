package spell

import (
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// pushType is where an area collection is centred and how it is shaped.
type pushType uint8

const (
	pushNone pushType = iota
	pushChain
	pushSrcCenter
	pushDstCenter
	pushCasterCenter
	pushInFront
	pushInBack
	pushInLine
)

const (
	maxNearbyRange = 400.0
	meleeRange     = 5.0
)

// Class IDs read by the raid-and-class selector.
const (
	classWarrior = 1
	classHunter  = 3
	classWarlock = 9
)

// setTargetMap resolves one selector code for effect eff.
func (a *Attempt) setTargetMap(eff int, cur types.Target) {
	entry, ok := selector.Lookup(cur)
	if !ok {
		a.debug("unhandled target selector", zap.Uint32("target", uint32(cur)), zap.Int("effect", eff))
		return
	}

	push := pushNone
	switch entry.Category {
	case selector.CategoryUnitCaster:
		push = a.casterTargets(eff, cur)
		if a.IsFinished() {
			return
		}

	case selector.CategoryUnitTarget:
		push = a.explicitTargets(eff, cur)

	case selector.CategoryUnitNearby:
		r := a.Spell.Range.Max
		if r > maxNearbyRange {
			r = maxNearbyRange
		}
		var u *world.Unit
		var g *world.GameObject
		switch entry.Kind {
		case selector.KindEnemy:
			u = a.searchNearbyUnit(r, selector.KindEnemy)
		case selector.KindAlly:
			u = a.searchNearbyUnit(r, selector.KindAlly)
		default:
			u, g = a.searchNearbyEntry(r)
		}
		switch {
		case u != nil:
			push = pushChain
			a.Targets.SetUnit(u)
		case g != nil:
			a.addGOTarget(g, eff)
			return
		default:
			return
		}

	case selector.CategoryAreaSrc:
		push = pushSrcCenter
	case selector.CategoryAreaDst:
		push = pushDstCenter
	case selector.CategoryAreaCone:
		switch {
		case a.has(types.AttrConeBack):
			push = pushInBack
		case a.has(types.AttrConeLine):
			push = pushInLine
		default:
			push = pushInFront
		}

	case selector.CategoryDestCaster:
		a.destFromCaster(eff, cur)
	case selector.CategoryDestTarget:
		a.destFromTarget(eff, cur)
	case selector.CategoryDestDest:
		if !a.destFromDest(eff, cur) {
			return
		}
	case selector.CategoryDestSpecial:
		a.destSpecial(cur)
	case selector.CategoryChannel:
		a.channelTargets(eff, cur)

	case selector.CategoryGameObject:
		switch cur {
		case types.TargetGameObject:
			a.addGOTarget(a.Targets.GameObject(), eff)
		case types.TargetLocked:
			if a.Targets.GameObjectGUID() != 0 {
				a.addGOTarget(a.Targets.GameObject(), eff)
			} else {
				a.addItemTarget(a.Targets.Item(), eff)
			}
		}
	}

	switch push {
	case pushNone:
	case pushChain:
		a.chainTargets(eff, cur)
	default:
		a.areaTargets(eff, cur, push)
	}
}

func (a *Attempt) casterTargets(eff int, cur types.Target) pushType {
	switch cur {
	case types.TargetUnitCaster:
		a.addUnitTarget(a.caster, eff, false)
	case types.TargetFishingSpot:
		a.fishingSpot()
	case types.TargetCasterMaster:
		a.addUnitTarget(a.env.Dir.Master(a.caster), eff, false)
	case types.TargetCasterPet:
		a.addUnitTarget(a.env.Dir.Pet(a.caster), eff, false)
	case types.TargetPartyWithinCasterRange, types.TargetRaidWithinCasterRange:
		return pushCasterCenter
	}
	return pushNone
}

func (a *Attempt) explicitTargets(eff int, cur types.Target) pushType {
	target := a.Targets.Unit()
	if target == nil {
		a.debug("no unit target", zap.Int("effect", eff), zap.Uint32("target", uint32(cur)))
		return pushNone
	}
	switch cur {
	case types.TargetUnitEnemy:
		a.selectMagnetTarget()
		return pushChain
	case types.TargetChainHeal:
		return pushChain
	case types.TargetTargetUnit:
		if !target.IsFriendlyTo(a.caster) && a.Spell.Effects[eff].Type == types.EffectDispel {
			a.selectMagnetTarget()
			return pushChain
		}
		a.addUnitTarget(target, eff, false)
	case types.TargetUnitFriend, types.TargetUnitRaid, types.TargetUnitParty, types.TargetCasterCompanion:
		a.addUnitTarget(target, eff, false)
	case types.TargetFriendAndParty, types.TargetRaidAndClass:
		return pushCasterCenter
	}
	return pushNone
}

// chainTargets commits the explicit unit and, for multi-target effects,
// the units the chain jumps to.
func (a *Attempt) chainTargets(eff int, cur types.Target) {
	target := a.Targets.Unit()
	if target == nil {
		a.debug("no chain unit target", zap.Int("effect", eff))
		return
	}
	n := a.Spell.Effects[eff].ChainTargets
	if n <= 1 {
		a.addUnitTarget(target, eff, false)
		return
	}
	kind := selector.KindEnemy
	switch cur {
	case types.TargetChainHeal, types.TargetFriendNearCaster, types.TargetNearCaster, types.TargetRaidNearCaster:
		kind = selector.KindChainHeal
	}
	for _, u := range a.searchChain(a.Spell.Range.Max, n, kind) {
		a.addUnitTarget(u, eff, false)
	}
}

// areaRadius is the effect radius widened for a moving player and capped
// at the visibility distance.
func (a *Attempt) areaRadius(eff int) float64 {
	r := a.Spell.Effects[eff].Radius
	if a.caster.IsPlayer() && a.caster.IsMoving() {
		r += meleeRange * 2
	}
	maxVis := 100.0
	if a.env.Defs != nil {
		maxVis = a.env.Defs.World.MaxVisibility
	}
	if r > maxVis {
		r = maxVis
	}
	return r
}

func (a *Attempt) areaTargets(eff int, cur types.Target, push pushType) {
	e := a.Spell.Effects[eff]
	if selector.RequirementOf(e.Type) == selector.RequireDest {
		return
	}
	radius := a.areaRadius(eff)

	var units []*world.Unit
	var gos []*world.GameObject
	switch cur {
	case types.TargetEnemyAoeSrc, types.TargetEnemyAoeDst, types.TargetEnemyCone24, types.TargetEnemyCone54:
		units = a.searchArea(radius, push, selector.KindEnemy, types.ScriptTarget{})
	case types.TargetFriendAoeSrc, types.TargetFriendAoeDst, types.TargetFriendCone:
		units = a.searchArea(radius, push, selector.KindAlly, types.ScriptTarget{})
	case types.TargetPartyAoeSrc, types.TargetPartyAoeDst, types.TargetPartyWithinCasterRange:
		units = a.partyMembers(a.caster, radius, false)
	case types.TargetRaidWithinCasterRange:
		units = a.partyMembers(a.caster, radius, true)
	case types.TargetScriptAoeSrc, types.TargetScriptAoeDst, types.TargetScriptCone60:
		radius = e.Radius
		sts := a.scriptTargets()
		if len(sts) == 0 {
			kind := selector.KindEnemy
			if state.IsPositiveEffect(a.Spell, eff) {
				kind = selector.KindAlly
			}
			units = a.searchArea(radius, push, kind, types.ScriptTarget{})
			break
		}
		for _, st := range sts {
			if st.Type == types.ScriptTargetGameObject {
				gos = append(gos, a.searchAreaGO(radius, push, st.Entry)...)
				continue
			}
			units = append(units, a.searchArea(radius, push, selector.KindEntry, st)...)
		}
	case types.TargetFriendAndParty:
		if t := a.Targets.Unit(); t != nil && a.ownerPlayer(t) != nil {
			units = a.partyMembers(t, radius, false)
		}
	case types.TargetRaidAndClass:
		a.raidAndClass(eff, radius)
	}

	if len(units) > 0 {
		if a.has(types.AttrCantTargetSelf) {
			units = removeUnits(units, func(u *world.Unit) bool { return u == a.caster })
		}
		units = a.filterArea(units)
		if k := a.Spell.MaxAffectedTargets; k > 0 {
			units = sampleUnits(a.env.Rand, units, k)
		}
		for _, u := range units {
			a.addUnitTarget(u, eff, false)
		}
	}
	if len(gos) > 0 {
		if k := a.Spell.MaxAffectedTargets; k > 0 {
			gos = sampleGOs(a.env.Rand, gos, k)
		}
		for _, g := range gos {
			a.addGOTarget(g, eff)
		}
	}
}

// raidAndClass adds the members of the target player's group sharing its
// class, plus the pets that class may buff.
func (a *Attempt) raidAndClass(eff int, radius float64) {
	tp := a.Targets.Unit()
	if tp == nil {
		return
	}
	if !tp.IsPlayer() || tp.Group == 0 {
		a.addUnitTarget(tp, eff, false)
		return
	}
	for _, m := range a.env.Dir.GroupMembers(tp.Group) {
		if !m.IsPlayer() {
			continue
		}
		if tp.Distance(m) <= radius && tp.Class == m.Class && !a.caster.IsHostileTo(m) {
			a.addUnitTarget(m, eff, false)
		}
		pet := a.env.Dir.Unit(m.Pet)
		if pet == nil || tp.Distance(pet) > radius || a.caster.IsHostileTo(pet) {
			continue
		}
		switch {
		case tp.Class == classWarrior && (m.Class == classHunter || pet.Entry == felguardEntry):
			a.addUnitTarget(pet, eff, false)
		case tp.Class == classWarlock && m.Class == classWarlock && pet.Entry != felguardEntry:
			a.addUnitTarget(pet, eff, false)
		}
	}
}

// channelTargets reads the targets of the original caster's channel.
func (a *Attempt) channelTargets(eff int, cur types.Target) {
	owner := a.origCaster
	if owner == nil && a.Spell.ID == spellChannelFromCaster {
		owner = a.caster
	}
	var ch *Attempt
	if owner != nil && a.env.Slots != nil {
		ch = a.env.Slots.Get(owner.GUID, types.SlotChanneled)
	}
	if ch == nil {
		a.debug("no current channeled spell", zap.Int("effect", eff))
		return
	}
	switch cur {
	case types.TargetChannelTarget:
		if u := ch.Targets.Unit(); u != nil {
			a.addUnitTarget(u, eff, false)
		} else {
			a.debug("channel spell has no unit target", zap.Uint32("channel", ch.Spell.ID))
		}
	case types.TargetChannelTargetDest:
		if ch.Targets.Has(types.TargetFlagDest) {
			*a.Targets = *ch.Targets
		} else {
			a.debug("channel spell has no destination", zap.Uint32("channel", ch.Spell.ID))
		}
	}
}

func (a *Attempt) scriptTargets() []types.ScriptTarget {
	if a.env.Defs == nil {
		return nil
	}
	return a.env.Defs.ScriptTargetsFor(a.Spell.ID)
}

// partyMembers collects the live party (or raid) of u within radius of
// it, pets included. A unit with no group is its own party.
func (a *Attempt) partyMembers(u *world.Unit, radius float64, raid bool) []*world.Unit {
	owner := a.env.Dir.Master(u)
	if owner == nil {
		owner = u
	}
	members := []*world.Unit{owner}
	if owner.Group != 0 {
		members = members[:0]
		for _, m := range a.env.Dir.GroupMembers(owner.Group) {
			if raid && m.InRaidWith(owner) || !raid && m.InPartyWith(owner) {
				members = append(members, m)
			}
		}
	}

	var out []*world.Unit
	add := func(m *world.Unit) {
		if m == nil || !m.IsAlive() || u.Distance(m) > radius {
			return
		}
		for _, o := range out {
			if o == m {
				return
			}
		}
		out = append(out, m)
	}
	for _, m := range members {
		add(m)
		add(a.env.Dir.Unit(m.Pet))
	}
	return out
}
