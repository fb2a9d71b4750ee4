// Package geom holds the 2D primitives shared by shapes, the scene and the tracer:
// vectors, affine matrices, axis-aligned rectangles and the per-object Transform.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a point or direction in the plane.
type Vec2 = r2.Vec

// V is a convenience constructor for Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Normalize returns the unit vector colinear to v, or the zero vector when v is zero.
func Normalize(v Vec2) Vec2 {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rotate rotates v counter-clockwise by angle radians around the origin.
func Rotate(v Vec2, angle float64) Vec2 {
	return r2.Rotate(v, angle, Vec2{})
}

// LeftPerp returns v rotated by +90 degrees.
func LeftPerp(v Vec2) Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Along returns origin + t*dir.
func Along(origin, dir Vec2, t float64) Vec2 {
	return r2.Add(origin, r2.Scale(t, dir))
}

// Distance returns the euclidean distance between p and q.
func Distance(p, q Vec2) float64 {
	return r2.Norm(r2.Sub(q, p))
}

// Angle returns the direction of v in radians, counter-clockwise from +X.
func Angle(v Vec2) float64 {
	return math.Atan2(v.Y, v.X)
}

// IsFinite reports whether both components are finite numbers.
func IsFinite(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
