package spell

import (
	"math"

	"go.uber.org/zap"

	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/engine/world"
	"github.com/nathoo/spellcore/types"
)

// allowHeightDiff bounds how far a caster-relative point may climb or
// drop from the caster.
const allowHeightDiff = 2.0

// fishingSpreadAngle is the half-width of the cast arc of a fishing line.
const fishingSpreadAngle = 0.6

// casterAngles and unitAngles give the facing offset of each directional
// selector. Codes missing here pick a random angle.
var casterAngles = map[types.Target]float64{
	types.TargetCasterFrontRight: -math.Pi / 4,
	types.TargetCasterBackRight:  -3 * math.Pi / 4,
	types.TargetCasterBackLeft:   3 * math.Pi / 4,
	types.TargetCasterFrontLeft:  math.Pi / 4,
	types.TargetMinionPosition:   0,
	types.TargetCasterFront:      0,
	types.TargetCasterBack:       math.Pi,
	types.TargetCasterLeft:       math.Pi / 2,
	types.TargetCasterRight:      -math.Pi / 2,
}

var unitAngles = map[types.Target]float64{
	types.TargetUnitFront:      0,
	types.TargetUnitBack:       math.Pi,
	types.TargetUnitRight:      math.Pi / 2,
	types.TargetUnitLeft:       -math.Pi / 2,
	types.TargetUnitFrontRight: -math.Pi / 4,
	types.TargetUnitBackRight:  -3 * math.Pi / 4,
	types.TargetUnitBackLeft:   3 * math.Pi / 4,
	types.TargetUnitFrontLeft:  math.Pi / 4,
}

// compassAngles are absolute bearings from the current destination.
var compassAngles = map[types.Target]float64{
	types.TargetDestNorth:     0,
	types.TargetDestSouth:     math.Pi,
	types.TargetDestEast:      math.Pi / 2,
	types.TargetDestWest:      -math.Pi / 2,
	types.TargetDestNorthEast: -math.Pi / 4,
	types.TargetDestNorthWest: -3 * math.Pi / 4,
	types.TargetDestSouthEast: 3 * math.Pi / 4,
	types.TargetDestSouthWest: math.Pi / 4,
}

// fishingSpot throws the line to a random point ahead of the caster. A
// point out of sight or on dry land fails the cast.
func (a *Attempt) fishingSpot() {
	minR, maxR := a.Spell.Range.Min, a.Spell.Range.Max
	dist := minR + (maxR-minR)*a.env.Rand.Float64()
	angle := a.caster.Pos.O + (a.env.Rand.Float64()*2-1)*fishingSpreadAngle

	p := a.caster.Pos
	p.X += dist * math.Cos(angle)
	p.Y += dist * math.Sin(angle)
	level, wet := a.env.Terrain.WaterLevel(p.X, p.Y)
	if !wet {
		level = a.env.Terrain.GroundHeight(p.X, p.Y)
	}
	p.Z = level
	a.Targets.SetDst(p, a.caster.MapID)

	if !a.env.Terrain.LineOfSight(a.caster.Pos, p) && a.caster.AreaID != fishingLOSExemptArea {
		a.failResolution(types.CastFailedLineOfSight)
		return
	}
	if !wet {
		a.failResolution(types.CastFailedNotHere)
	}
}

// failResolution aborts the cast from inside target resolution.
func (a *Attempt) failResolution(r types.CastResult) {
	a.sendCastResult(r)
	a.sendChannelUpdate(0)
	a.finish(false)
}

// pointDistance is the effect radius, at least the reference's size. A
// random side draws between the two.
func (a *Attempt) pointDistance(eff int, size float64, randomSide bool) float64 {
	dist := a.Spell.Effects[eff].Radius
	if dist < size {
		return size
	}
	if randomSide {
		dist = size + (dist-size)*a.env.Rand.Float64()
	}
	return dist
}

func (a *Attempt) destFromCaster(eff int, cur types.Target) {
	switch cur {
	case types.TargetCasterSrc:
		a.Targets.SetSrc(a.caster.Pos)
		return
	case types.TargetCasterDest:
		a.Targets.SetDst(a.caster.Pos, a.caster.MapID)
		return
	}

	dist := a.pointDistance(eff, a.caster.BoundingRadius, cur == types.TargetCasterRandomSide)
	if cur == types.TargetCasterFront {
		a.Targets.SetDst(a.env.Terrain.FirstCollision(a.caster.Pos, dist, 0), a.caster.MapID)
		return
	}
	angle, ok := casterAngles[cur]
	if !ok {
		angle = a.randAngle()
	}
	p := a.env.Terrain.ValidPointInAngle(a.caster.Pos, dist, angle, allowHeightDiff)
	a.Targets.SetDst(p, a.caster.MapID)
}

func (a *Attempt) destFromTarget(eff int, cur types.Target) {
	target := a.Targets.Unit()
	if target == nil {
		a.debug("no unit target for destination", zap.Int("effect", eff))
		return
	}
	if cur == types.TargetCasterTargetPosition || cur == types.TargetUnitPosition {
		a.Targets.SetDst(target.Pos, target.MapID)
		return
	}
	dist := a.pointDistance(eff, target.BoundingRadius, false)
	angle, ok := unitAngles[cur]
	if !ok {
		angle = a.randAngle()
	}
	p := a.env.Terrain.ValidPointInAngle(target.Pos, dist, angle, math.Inf(1))
	a.Targets.SetDst(p, target.MapID)
}

// destFromDest moves the destination along a compass bearing. It returns
// false for the dynamic-object selectors, which end the selector without
// collecting.
func (a *Attempt) destFromDest(eff int, cur types.Target) bool {
	if !a.Targets.Has(types.TargetFlagDest) {
		a.debug("no destination", zap.Int("effect", eff))
		return true
	}
	switch cur {
	case types.TargetDynobjEnemy, types.TargetDynobjAlly, types.TargetCurrentReference, types.TargetTrajectory:
		return false
	}
	angle, ok := compassAngles[cur]
	if !ok {
		angle = a.randAngle()
	}
	dist := a.Spell.Effects[eff].Radius
	if cur == types.TargetDestRandomSide {
		dist *= a.env.Rand.Float64()
	}
	from := a.Targets.Dst
	from.O = 0
	p := world.NearPoint(from, dist, angle)
	p.O = a.Targets.Dst.O
	p.Z = a.env.Terrain.GroundHeight(p.X, p.Y)
	a.Targets.SetDst(p, a.Targets.DstMap)
	return true
}

func (a *Attempt) destSpecial(cur types.Target) {
	switch cur {
	case types.TargetDatabase:
		var tp types.TeleportPosition
		ok := false
		if a.env.Defs != nil {
			tp, ok = a.env.Defs.TeleportPositions[a.Spell.ID]
		}
		if !ok {
			a.debug("unknown target coordinates")
			return
		}
		if state.HasEffect(a.Spell, types.EffectTeleportUnits) {
			a.Targets.SetDst(tp.Pos, tp.MapID)
		} else if tp.MapID == a.caster.MapID {
			a.Targets.SetDst(tp.Pos, a.caster.MapID)
		}

	case types.TargetHomeBind:
		if a.caster.IsPlayer() {
			p := a.caster.Home
			p.O = a.caster.Pos.O
			a.Targets.SetDst(p, a.caster.HomeMapID)
		}

	case types.TargetLocScriptNearCaster:
		u, g := a.searchNearbyEntry(a.Spell.Range.Max)
		switch {
		case u != nil:
			a.Targets.SetDst(u.Pos, u.MapID)
		case g != nil:
			a.Targets.SetDst(g.Pos, g.MapID)
		}
	}
}
