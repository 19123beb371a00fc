package spell

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/selector"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// coneArc is the width of front and back cones.
const coneArc = 2 * math.Pi / 3

func (a *Attempt) jumpRadius() float64 {
	if a.env.Defs == nil || a.env.Defs.World.ChainJumpRadius <= 0 {
		return 10
	}
	return a.env.Defs.World.ChainJumpRadius
}

func (a *Attempt) ensureDst() {
	if !a.Targets.Has(types.TargetFlagDest) {
		a.Targets.SetDst(a.caster.Pos, a.caster.MapID)
	}
}

func (a *Attempt) ensureSrc() {
	if !a.Targets.Has(types.TargetFlagSource) {
		a.Targets.SetSrc(a.caster.Pos)
	}
}

// pushCenter is the origin of an area collection. It reports false for a
// chain centre without a unit target.
func (a *Attempt) pushCenter(push pushType) (types.Position, bool) {
	switch push {
	case pushDstCenter:
		a.ensureDst()
		return a.Targets.Dst, true
	case pushSrcCenter:
		a.ensureSrc()
		return a.Targets.Src, true
	case pushChain:
		t := a.Targets.Unit()
		if t == nil {
			a.debug("no unit target for area centre")
			return types.Position{}, false
		}
		return t.Pos, true
	}
	return a.caster.Pos, true
}

// inShape tests the cone and line pushes against the caster's facing.
func (a *Attempt) inShape(push pushType, u *world.Unit) bool {
	from := a.caster.Pos
	switch push {
	case pushInFront:
		return world.HasInArc(from, coneArc, u.Pos)
	case pushInBack:
		from.O += math.Pi
		return world.HasInArc(from, coneArc, u.Pos)
	case pushInLine:
		return world.InLine(from, u.Pos, u.BoundingRadius+a.caster.BoundingRadius)
	}
	return true
}

// hostileSource is the unit whose faction decides enemy searches.
func (a *Attempt) hostileSource() *world.Unit {
	if a.origCaster != nil {
		return a.origCaster
	}
	return a.caster
}

// searchArea collects the units in radius matching the polarity. Entry
// searches match st.Entry, alive or dead by st.Type. Totems are never
// collected.
func (a *Attempt) searchArea(radius float64, push pushType, kind selector.Kind, st types.ScriptTarget) []*world.Unit {
	center, ok := a.pushCenter(push)
	if !ok {
		return nil
	}
	if kind == selector.KindEntry && st.Entry == 0 {
		return nil
	}
	src := a.hostileSource()
	playersOnly := a.has(types.AttrPlayersOnly)

	return a.env.Space.UnitsInRange(center, radius, func(u *world.Unit) bool {
		if u.IsTotem() || playersOnly && !u.IsPlayer() {
			return false
		}
		if !a.inShape(push, u) {
			return false
		}
		switch kind {
		case selector.KindEnemy:
			return u.IsAlive() && src.IsHostileTo(u) && !u.HasFlag(types.UnitFlagGameMaster)
		case selector.KindAlly:
			return u.IsAlive() && src.IsFriendlyTo(u)
		case selector.KindEntry:
			if u.Entry != st.Entry || u.IsPlayer() {
				return false
			}
			return u.IsAlive() != (st.Type == types.ScriptTargetDead)
		}
		return u.IsAlive()
	})
}

// searchAreaGO collects the spawned objects of one entry in radius.
func (a *Attempt) searchAreaGO(radius float64, push pushType, entry uint32) []*world.GameObject {
	if entry == 0 {
		return nil
	}
	center, ok := a.pushCenter(push)
	if !ok {
		return nil
	}
	return a.env.Space.GameObjectsInRange(center, radius, func(g *world.GameObject) bool {
		return g.Entry == entry
	})
}

// searchNearbyUnit finds the closest hostile or friendly unit other than
// the caster.
func (a *Attempt) searchNearbyUnit(r float64, kind selector.Kind) *world.Unit {
	return a.env.Space.NearestUnit(a.caster.Pos, r, func(u *world.Unit) bool {
		if u == a.caster || !u.IsAlive() {
			return false
		}
		if kind == selector.KindAlly {
			return a.caster.IsFriendlyTo(u)
		}
		return !a.caster.IsFriendlyTo(u)
	})
}

// searchNearbyEntry walks the spell's script targets and keeps the
// closest match. A creature found later replaces an earlier object and
// each match narrows the range. Spells without script targets fall back
// to a polarity search.
func (a *Attempt) searchNearbyEntry(r float64) (*world.Unit, *world.GameObject) {
	sts := a.scriptTargets()
	if len(sts) == 0 {
		a.debug("spell has no script targets")
		if state.IsPositiveSpell(a.Spell) {
			return a.searchNearbyUnit(r, selector.KindAlly), nil
		}
		return a.searchNearbyUnit(r, selector.KindEnemy), nil
	}

	var unit *world.Unit
	var gobj *world.GameObject
	for _, st := range sts {
		switch st.Type {
		case types.ScriptTargetGameObject:
			if st.Entry == 0 {
				continue
			}
			g := a.env.Space.NearestGameObject(a.caster.Pos, r, func(g *world.GameObject) bool {
				return g.Entry == st.Entry
			})
			if g != nil {
				unit, gobj = nil, g
				r = world.Dist3D(a.caster.Pos, g.Pos)
			}
		default:
			wantAlive := st.Type != types.ScriptTargetDead
			u := a.env.Space.NearestUnit(a.caster.Pos, r, func(u *world.Unit) bool {
				return !u.IsPlayer() && u.Entry == st.Entry && u.IsAlive() == wantAlive
			})
			if u != nil {
				unit, gobj = u, nil
				r = u.DistanceTo(a.caster.Pos)
			}
		}
	}
	return unit, gobj
}

// healRank orders chain-heal candidates: lower ranks are healed first.
// Full health ranks last; outside the main unit's raid ranks 0.
func (a *Attempt) healRank(main, u *world.Unit) int {
	mo := a.env.Dir.Master(main)
	if mo == nil {
		mo = main
	}
	if mo.IsPlayer() && mo.Group != 0 {
		uo := a.env.Dir.Master(u)
		if uo == nil {
			uo = u
		}
		if !uo.IsPlayer() || !uo.InRaidWith(mo) {
			return 0
		}
	}
	if u.Health >= u.MaxHealth || u.MaxHealth <= 0 {
		return 20000
	}
	return u.Health * 10000 / u.MaxHealth
}

func (a *Attempt) ownerOrSelf(u *world.Unit) *world.Unit {
	if o := a.env.Dir.Master(u); o != nil {
		return o
	}
	return u
}

// searchChain walks up to num links starting at the explicit unit target.
// The first link is always the target itself.
func (a *Attempt) searchChain(maxRange float64, num int, kind selector.Kind) []*world.Unit {
	cur := a.Targets.Unit()
	if cur == nil {
		return nil
	}
	jump := a.jumpRadius()
	if a.Spell.DmgClass != types.DamageClassMelee {
		maxRange += float64(num) * jump
	}

	var cands []*world.Unit
	if kind == selector.KindChainHeal {
		cands = a.searchArea(maxRange, pushChain, selector.KindAlly, types.ScriptTarget{})
		main := a.caster
		sort.SliceStable(cands, func(i, j int) bool {
			return a.healRank(main, cands[i]) < a.healRank(main, cands[j])
		})
	} else {
		cands = a.searchArea(maxRange, pushChain, kind, types.ScriptTarget{})
	}
	cands = removeUnits(cands, func(u *world.Unit) bool { return u == cur })

	ignoreLOS := a.has(types.AttrIgnoreLOS)
	los := func(x, y *world.Unit) bool {
		return ignoreLOS || a.env.Terrain == nil || a.env.Terrain.LineOfSight(x.Pos, y.Pos)
	}

	var out []*world.Unit
	for num > 0 {
		out = append(out, cur)
		num--
		if len(cands) == 0 {
			break
		}

		next := 0
		if kind == selector.KindChainHeal {
			bad := false
			for {
				for next < len(cands) {
					c := cands[next]
					skip := bad || cur.Distance(c) > jump || !los(cur, c) ||
						c.HasFlag(types.UnitFlagNotPlayerSpellTarget) || c == cur ||
						c.IsCreature() && !c.IsPvP()
					if !skip {
						break
					}
					bad = false
					next++
				}
				if next == len(cands) {
					cands = nil
					break
				}
				c := cands[next]
				if c.InSanctuary() || cur.InSanctuary() {
					if c.IsPlayer() && cur.IsPlayer() && a.ownerOrSelf(c).Team != a.ownerOrSelf(cur).Team {
						a.debug("chain stopped at sanctuary", zap.Uint64("link", uint64(c.GUID)))
						return out
					}
				}
				co := a.ownerOrSelf(cur)
				if co.IsPlayer() && co.Group != 0 {
					if no := a.ownerOrSelf(c); no.IsPlayer() && !no.InRaidWith(co) {
						bad = true
					}
				}
				if !bad {
					break
				}
			}
			if len(cands) == 0 {
				break
			}
		} else {
			from := cur
			sort.SliceStable(cands, func(i, j int) bool {
				return from.Distance(cands[i]) < from.Distance(cands[j])
			})
			if cur.Distance(cands[0]) > jump {
				break
			}
			for a.chainSkips(cands[next], cur, maxRange, los) {
				next++
				if next == len(cands) || cur.Distance(cands[next]) > jump {
					return out
				}
			}
		}

		cur = cands[next]
		cands = append(cands[:next], cands[next+1:]...)
	}
	return out
}

// chainSkips rejects a nearest-order candidate.
func (a *Attempt) chainSkips(c, cur *world.Unit, maxRange float64, los func(x, y *world.Unit) bool) bool {
	if a.Spell.DmgClass == types.DamageClassMelee && !a.caster.IsInFront(c, maxRange) {
		return true
	}
	if !a.caster.CanDetect(c) {
		return true
	}
	if a.has(types.AttrCantTargetCCd) && (c.IsCrowdControlled() || c.HasFlag(types.UnitFlagCritter)) {
		return true
	}
	return !los(cur, c)
}

func removeUnits(units []*world.Unit, drop func(*world.Unit) bool) []*world.Unit {
	out := units[:0]
	for _, u := range units {
		if !drop(u) {
			out = append(out, u)
		}
	}
	return out
}

// sampleUnits keeps k units chosen uniformly with a partial Fisher-Yates
// shuffle.
func sampleUnits(r Rand, units []*world.Unit, k int) []*world.Unit {
	if k <= 0 || len(units) <= k {
		return units
	}
	for i := 0; i < k; i++ {
		j := i + r.Intn(len(units)-i)
		units[i], units[j] = units[j], units[i]
	}
	return units[:k]
}

func sampleGOs(r Rand, gos []*world.GameObject, k int) []*world.GameObject {
	if k <= 0 || len(gos) <= k {
		return gos
	}
	for i := 0; i < k; i++ {
		j := i + r.Intn(len(gos)-i)
		gos[i], gos[j] = gos[j], gos[i]
	}
	return gos[:k]
}
