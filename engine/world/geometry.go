package world

import (
	"math"

	"github.com/nathoo/spellcore/types"
)

// Dist2D is the planar distance between two points.
func Dist2D(a, b types.Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Dist3D is the straight-line distance between two points.
func Dist3D(a, b types.Position) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// NormalizeOrientation wraps an angle into [0, 2π).
func NormalizeOrientation(o float64) float64 {
	o = math.Mod(o, 2*math.Pi)
	if o < 0 {
		o += 2 * math.Pi
	}
	return o
}

// AngleTo is the absolute bearing from a to b.
func AngleTo(a, b types.Position) float64 {
	return NormalizeOrientation(math.Atan2(b.Y-a.Y, b.X-a.X))
}

// HasInArc reports whether p lies within arc radians centred on from's
// facing.
func HasInArc(from types.Position, arc float64, p types.Position) bool {
	if from.X == p.X && from.Y == p.Y {
		return true
	}
	rel := AngleTo(from, p) - from.O
	rel = NormalizeOrientation(rel)
	if rel > math.Pi {
		rel -= 2 * math.Pi
	}
	return math.Abs(rel) <= arc/2+1e-9
}

// InLine reports whether p lies inside a rectangle of the given width
// projected along from's facing.
func InLine(from types.Position, p types.Position, width float64) bool {
	if !HasInArc(from, math.Pi, p) {
		return false
	}
	rel := AngleTo(from, p) - from.O
	return math.Abs(math.Sin(rel))*Dist2D(from, p) < width
}

// NearPoint offsets from by dist at angle relative to its facing.
func NearPoint(from types.Position, dist, angle float64) types.Position {
	a := from.O + angle
	return types.Position{
		X: from.X + dist*math.Cos(a),
		Y: from.Y + dist*math.Sin(a),
		Z: from.Z,
		O: from.O,
	}
}
