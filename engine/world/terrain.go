package world

import (
	"math"

	"github.com/nathoo/spellcore/types"
)

// Terrain answers ground, water and line-of-sight queries. The ground is
// flat, walls are vertical segments and water is a set of rectangles.
type Terrain struct {
	Ground float64
	Walls  []types.WallDef
	Water  []types.WaterDef
}

// NewTerrain builds a terrain from the world definition.
func NewTerrain(w types.WorldDef) *Terrain {
	return &Terrain{Ground: w.Ground, Walls: w.Walls, Water: w.Water}
}

// step is the distance the point searches walk back on each retry.
const step = 0.5

// GroundHeight returns the ground level at (x, y).
func (t *Terrain) GroundHeight(x, y float64) float64 {
	return t.Ground
}

// WaterLevel returns the surface height of the water covering (x, y).
func (t *Terrain) WaterLevel(x, y float64) (float64, bool) {
	for _, w := range t.Water {
		if x >= w.MinX && x <= w.MaxX && y >= w.MinY && y <= w.MaxY {
			return w.Level, true
		}
	}
	return 0, false
}

// IsInWater reports whether a point is at or below a water surface.
func (t *Terrain) IsInWater(p types.Position) bool {
	level, ok := t.WaterLevel(p.X, p.Y)
	return ok && p.Z <= level
}

// LineOfSight reports whether no wall crosses the segment a-b.
func (t *Terrain) LineOfSight(a, b types.Position) bool {
	for _, w := range t.Walls {
		if segmentsCross(a, b, w.A, w.B) {
			return false
		}
	}
	return true
}

// ValidPointInAngle walks from dist toward from at angle (relative to
// from's facing) until the point is visible and within maxHeight of the
// start height. The returned point sits on the ground.
func (t *Terrain) ValidPointInAngle(from types.Position, dist, angle, maxHeight float64) types.Position {
	for d := dist; d > 0; d -= step {
		p := NearPoint(from, d, angle)
		p.Z = t.GroundHeight(p.X, p.Y)
		if math.Abs(p.Z-from.Z) <= maxHeight && t.LineOfSight(from, p) {
			return p
		}
	}
	p := from
	p.Z = t.GroundHeight(from.X, from.Y)
	return p
}

// FirstCollision casts a ray from from along angle. It stops short of the
// first wall and lands on the water surface or the ground.
func (t *Terrain) FirstCollision(from types.Position, dist, angle float64) types.Position {
	p := NearPoint(from, dist, angle)
	for d := dist; d > 0 && !t.LineOfSight(from, p); d -= step {
		p = NearPoint(from, d-step, angle)
	}
	if level, ok := t.WaterLevel(p.X, p.Y); ok && level > t.GroundHeight(p.X, p.Y) {
		p.Z = level
	} else {
		p.Z = t.GroundHeight(p.X, p.Y)
	}
	return p
}

func segmentsCross(p1, p2, q1, q2 types.Position) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c types.Position) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
