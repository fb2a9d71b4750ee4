package shape

import (
	"fmt"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
)

// Polygon is a closed outline in its object's local frame, centred on the
// bounding box it was created from. Points are wound so that the left
// perpendicular of every edge faces outward.
type Polygon struct {
	Points []geom.Vec2
}

// NewPolygonObject builds a polygon object from world-space points. The points are
// re-centred on their bounding box and the returned Transform carries the placement.
func NewPolygonObject(id string, points []geom.Vec2, mat material.Material) (*Object, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	bounds := geom.BoundsOf(points...)
	center := bounds.Center()

	local := make([]geom.Vec2, len(points))
	for i, p := range points {
		local[i] = geom.Vec2{X: p.X - center.X, Y: p.Y - center.Y}
	}
	if signedArea(local) > 0 {
		for i, j := 0, len(local)-1; i < j; i, j = i+1, j-1 {
			local[i], local[j] = local[j], local[i]
		}
	}

	return &Object{
		ID:        id,
		Kind:      KindPolygon,
		Polygon:   &Polygon{Points: local},
		Transform: geom.NewTransform(center, 0, geom.Vec2{X: bounds.Width, Y: bounds.Height}),
		Material:  mat,
	}, nil
}

// signedArea is twice the shoelace area: positive for counter-clockwise winding
// in a y-up frame.
func signedArea(points []geom.Vec2) float64 {
	var sum float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum
}

func (p *Polygon) worldPoints(t geom.Transform) []geom.Vec2 {
	out := make([]geom.Vec2, len(p.Points))
	for i, pt := range p.Points {
		out[i] = t.Apply(pt)
	}
	return out
}

func (p *Polygon) intersect(t geom.Transform, origin, dir geom.Vec2) (float64, geom.Vec2, bool) {
	world := p.worldPoints(t)
	n := len(world)

	best, found := 0.0, false
	var normal geom.Vec2
	for i := range world {
		p1, p2 := world[i], world[(i+1)%n]
		lambda, ok := intersectSegment(origin, dir, p1, p2)
		if !ok || (found && lambda >= best) {
			continue
		}
		best, found = lambda, true
		normal = geom.Normalize(geom.LeftPerp(geom.Vec2{X: p2.X - p1.X, Y: p2.Y - p1.Y}))
	}
	return best, normal, found
}

// contains is the even-odd rule on the world-space edges.
func (p *Polygon) contains(t geom.Transform, pt geom.Vec2) bool {
	world := p.worldPoints(t)
	inside := false
	for i, j := 0, len(world)-1; i < len(world); j, i = i, i+1 {
		a, b := world[i], world[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
