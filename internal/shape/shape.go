// Package shape implements the two kinds of optical object, closed polygons and
// compound lenses, and their ray intersection and containment queries.
package shape

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
)

var (
	ErrTooFewPoints = errors.New("polygon needs at least 3 points")
	ErrInvalidLens  = errors.New("invalid lens")
)

// Kind tags the variant held by an Object.
type Kind string

const (
	KindPolygon Kind = "polygon"
	KindLens    Kind = "lens"
)

// Object is a scene object: exactly one of Polygon or Lens is set, matching Kind.
// The Transform is owned by the object; the Material is a shared immutable value.
type Object struct {
	ID        string
	Kind      Kind
	Polygon   *Polygon
	Lens      *Lens
	Transform geom.Transform
	Material  material.Material
}

// Hit is the nearest crossing of a ray with an object's boundary.
// Normal is unit length and faces outward from the object; callers orient it
// against the incoming ray themselves.
type Hit struct {
	T      float64
	Point  geom.Vec2
	Normal geom.Vec2
}

// Intersect returns the nearest boundary crossing at t >= 0 along origin + t*dir.
func (o *Object) Intersect(origin, dir geom.Vec2) (Hit, bool) {
	var (
		t      float64
		normal geom.Vec2
		ok     bool
	)
	switch o.Kind {
	case KindPolygon:
		t, normal, ok = o.Polygon.intersect(o.Transform, origin, dir)
	case KindLens:
		t, normal, ok = o.Lens.intersect(o.Transform, origin, dir)
	}
	if !ok {
		return Hit{}, false
	}
	return Hit{T: t, Point: geom.Along(origin, dir, t), Normal: normal}, true
}

// ContainsPoint reports whether p lies inside the object.
//
// Lenses always report false: a ray is never assumed to start inside a lens.
func (o *Object) ContainsPoint(p geom.Vec2) bool {
	switch o.Kind {
	case KindPolygon:
		return o.Polygon.contains(o.Transform, p)
	default:
		return false
	}
}

// Outline returns the closed world-space boundary. Lens arcs are sampled with
// arcSteps segments each.
func (o *Object) Outline(arcSteps int) []geom.Vec2 {
	switch o.Kind {
	case KindPolygon:
		return o.Polygon.worldPoints(o.Transform)
	case KindLens:
		return o.Lens.outline(o.Transform, arcSteps)
	default:
		return nil
	}
}

// BoundingRect is the axis-aligned envelope of the object's transform.
func (o *Object) BoundingRect() geom.Rect {
	return o.Transform.BoundingRect()
}

// Resize drags one corner of o to newSize while the opposite corner stays put.
// A lens takes only the height from newSize: its width follows from the radii
// and thickness, and its transform is rebased so BaseSize is the new extent
// at unit scale.
func (o *Object) Resize(dragged geom.Corner, newSize geom.Vec2) error {
	if o.Kind != KindLens {
		o.Transform.ResizeAgainstCorner(dragged, newSize)
		return nil
	}
	if err := o.Lens.Validate(newSize.Y); err != nil {
		return err
	}
	total, _, _ := o.Lens.Widths(newSize.Y)
	o.Transform.ResizeAgainstCorner(dragged, geom.Vec2{X: total, Y: newSize.Y})
	o.Transform.BaseSize = o.Transform.Size()
	o.Transform.Scale = geom.Vec2{X: 1, Y: 1}
	return nil
}

// Clone returns a deep copy that shares nothing mutable with o.
func (o *Object) Clone() *Object {
	c := *o
	if o.Polygon != nil {
		p := Polygon{Points: append([]geom.Vec2(nil), o.Polygon.Points...)}
		c.Polygon = &p
	}
	if o.Lens != nil {
		l := *o.Lens
		c.Lens = &l
	}
	return &c
}

// parallelTolerance bounds |denominator| / (|edge|*|dir|) below which a ray and a
// segment are treated as parallel.
const parallelTolerance = 1e-12

// intersectSegment solves origin + t*dir = p1 + u*(p2-p1) for t >= 0 and u in [0,1].
func intersectSegment(origin, dir, p1, p2 geom.Vec2) (float64, bool) {
	edge := r2.Sub(p2, p1)
	denom := edge.Y*dir.X - edge.X*dir.Y
	if math.Abs(denom) <= parallelTolerance*r2.Norm(edge)*r2.Norm(dir) {
		return 0, false
	}
	t := (edge.X*(origin.Y-p1.Y) - edge.Y*(origin.X-p1.X)) / denom
	u := (dir.X*(origin.Y-p1.Y) - dir.Y*(origin.X-p1.X)) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}
