package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
)

// Lens is two circular arcs joined by a rectangular core. A positive radius bulges
// outward (convex), a negative one recedes (concave) and an infinite one is flat.
// Thickness is the width of the core between the two sides.
type Lens struct {
	R1        float64 `json:"r1"`
	R2        float64 `json:"r2"`
	Thickness float64 `json:"middleThickness"`
}

// ArcWidth is how far an arc of radius r spanning height h bulges beyond, or
// recedes behind, the edge of the core. Flat sides have zero width.
func ArcWidth(r, h float64) float64 {
	if math.IsInf(r, 0) {
		return 0
	}
	return math.Abs(r) - math.Sqrt(r*r-h*h/4)
}

// ArcHalfAngle is the half opening angle of an arc, signed by the radius.
func ArcHalfAngle(r, h float64) float64 {
	a := math.Asin((h / 2) / math.Abs(r))
	if r < 0 {
		return -a
	}
	return a
}

// Widths returns the total width of the lens at height h and the widths of its
// left and right arcs.
func (l Lens) Widths(h float64) (total, left, right float64) {
	left = ArcWidth(l.R1, h)
	right = ArcWidth(l.R2, h)
	return left + l.Thickness + right, left, right
}

// Validate checks that both arcs can span height h.
func (l Lens) Validate(h float64) error {
	if !(h > 0) {
		return fmt.Errorf("%w: height %v must be positive", ErrInvalidLens, h)
	}
	if !(l.Thickness >= 0) {
		return fmt.Errorf("%w: thickness %v must not be negative", ErrInvalidLens, l.Thickness)
	}
	for _, r := range []float64{l.R1, l.R2} {
		if math.IsInf(r, 0) {
			continue
		}
		if math.IsNaN(r) || math.Abs(r) < h/2 {
			return fmt.Errorf("%w: radius %v cannot span height %v", ErrInvalidLens, r, h)
		}
	}
	return nil
}

// NewLensObject places a lens with its bounding box centred on position.
func NewLensObject(id string, lens Lens, position geom.Vec2, height, rotation float64, mat material.Material) (*Object, error) {
	if err := lens.Validate(height); err != nil {
		return nil, err
	}
	total, _, _ := lens.Widths(height)
	return &Object{
		ID:        id,
		Kind:      KindLens,
		Lens:      &lens,
		Transform: geom.NewTransform(position, rotation, geom.Vec2{X: total, Y: height}),
		Material:  mat,
	}, nil
}

// lensSide is one side of the lens profile in the local frame. The side either is a
// flat vertical segment at edgeX or an arc whose open ends sit at x = edgeX.
type lensSide struct {
	flat    bool
	edgeX   float64
	center  geom.Vec2
	radius  float64
	start   float64
	sweep   float64
	outward float64 // +1 when the radial direction points out of the lens
}

type lensProfile struct {
	halfHeight  float64
	left, right lensSide
}

// profile lays the lens out in its local frame, centred on its bounding box.
// The height comes from the transform; horizontal extents come from the radii.
func (l *Lens) profile(h float64) (lensProfile, bool) {
	if l.Validate(h) != nil {
		return lensProfile{}, false
	}
	total, lw, rw := l.Widths(h)
	xl := -total/2 + lw
	xr := xl + l.Thickness

	p := lensProfile{halfHeight: h / 2}

	switch {
	case math.IsInf(l.R1, 0):
		p.left = lensSide{flat: true, edgeX: xl}
	case l.R1 > 0:
		a := ArcHalfAngle(l.R1, h)
		p.left = lensSide{edgeX: xl, center: geom.V(xl-lw+l.R1, 0), radius: l.R1, start: math.Pi - a, sweep: 2 * a, outward: 1}
	default:
		a := -ArcHalfAngle(l.R1, h)
		p.left = lensSide{edgeX: xl - lw, center: geom.V(xl+l.R1, 0), radius: -l.R1, start: -a, sweep: 2 * a, outward: -1}
	}

	switch {
	case math.IsInf(l.R2, 0):
		p.right = lensSide{flat: true, edgeX: xr}
	case l.R2 > 0:
		a := ArcHalfAngle(l.R2, h)
		p.right = lensSide{edgeX: xr, center: geom.V(xr+rw-l.R2, 0), radius: l.R2, start: -a, sweep: 2 * a, outward: 1}
	default:
		a := -ArcHalfAngle(l.R2, h)
		p.right = lensSide{edgeX: xr + rw, center: geom.V(xr-l.R2, 0), radius: -l.R2, start: math.Pi - a, sweep: 2 * a, outward: -1}
	}
	return p, true
}

type lensSegment struct {
	a, b   geom.Vec2
	normal geom.Vec2
}

// segments returns the straight parts of the profile in local space: top, bottom
// and any flat sides.
func (p lensProfile) segments() []lensSegment {
	hh := p.halfHeight
	segs := []lensSegment{
		{a: geom.V(p.left.edgeX, -hh), b: geom.V(p.right.edgeX, -hh), normal: geom.V(0, -1)},
		{a: geom.V(p.left.edgeX, hh), b: geom.V(p.right.edgeX, hh), normal: geom.V(0, 1)},
	}
	if p.left.flat {
		segs = append(segs, lensSegment{a: geom.V(p.left.edgeX, -hh), b: geom.V(p.left.edgeX, hh), normal: geom.V(-1, 0)})
	}
	if p.right.flat {
		segs = append(segs, lensSegment{a: geom.V(p.right.edgeX, -hh), b: geom.V(p.right.edgeX, hh), normal: geom.V(1, 0)})
	}
	return segs
}

func (l *Lens) intersect(t geom.Transform, origin, dir geom.Vec2) (float64, geom.Vec2, bool) {
	p, ok := l.profile(t.Size().Y)
	if !ok {
		return 0, geom.Vec2{}, false
	}

	best, found := 0.0, false
	var normal geom.Vec2
	consider := func(lambda float64, n geom.Vec2) {
		if !found || lambda < best {
			best, found, normal = lambda, true, n
		}
	}

	for _, s := range p.segments() {
		a, b := t.ApplyRigid(s.a), t.ApplyRigid(s.b)
		if lambda, ok := intersectSegment(origin, dir, a, b); ok {
			consider(lambda, geom.Rotate(s.normal, t.Rotation))
		}
	}

	for _, side := range []lensSide{p.left, p.right} {
		if side.flat {
			continue
		}
		center := t.ApplyRigid(side.center)
		lambda, hit, ok := intersectArc(origin, dir, center, side.radius, side.start+t.Rotation, side.sweep)
		if !ok {
			continue
		}
		radial := geom.Normalize(r2.Sub(hit, center))
		consider(lambda, r2.Scale(side.outward, radial))
	}

	return best, normal, found
}

// intersectArc intersects the ray with the full circle and keeps the nearest
// crossing at t >= 0 whose polar angle lies in [start, start+sweep] modulo 2π.
func intersectArc(origin, dir, center geom.Vec2, radius, start, sweep float64) (float64, geom.Vec2, bool) {
	if !(radius > 0) {
		return 0, geom.Vec2{}, false
	}
	oc := r2.Sub(origin, center)
	a := r2.Dot(dir, dir)
	if a == 0 {
		return 0, geom.Vec2{}, false
	}
	b := r2.Dot(oc, dir)
	c := r2.Dot(oc, oc) - radius*radius
	disc := b*b - a*c
	if disc < 0 {
		return 0, geom.Vec2{}, false
	}
	sq := math.Sqrt(disc)
	for _, lambda := range [2]float64{(-b - sq) / a, (-b + sq) / a} {
		if lambda < 0 {
			continue
		}
		hit := geom.Along(origin, dir, lambda)
		if angleInRange(math.Atan2(hit.Y-center.Y, hit.X-center.X), start, sweep) {
			return lambda, hit, true
		}
	}
	return 0, geom.Vec2{}, false
}

const angleTolerance = 1e-9

func angleInRange(angle, start, sweep float64) bool {
	d := math.Mod(angle-start, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= sweep+angleTolerance || d >= 2*math.Pi-angleTolerance
}

// outline walks the boundary clockwise from the top-left end of the top edge.
func (l *Lens) outline(t geom.Transform, arcSteps int) []geom.Vec2 {
	p, ok := l.profile(t.Size().Y)
	if !ok {
		return nil
	}
	if arcSteps < 1 {
		arcSteps = 1
	}
	hh := p.halfHeight

	var local []geom.Vec2
	local = append(local, geom.V(p.left.edgeX, -hh))
	local = append(local, p.right.points(arcSteps, hh, false)...)
	local = append(local, geom.V(p.left.edgeX, hh))
	local = append(local, p.left.points(arcSteps, hh, true)...)

	out := make([]geom.Vec2, 0, len(local))
	for _, pt := range local {
		out = append(out, t.ApplyRigid(pt))
	}
	return out
}

// points samples the side from top to bottom, or bottom to top when upward is set.
func (s lensSide) points(steps int, hh float64, upward bool) []geom.Vec2 {
	var pts []geom.Vec2
	if s.flat {
		pts = []geom.Vec2{geom.V(s.edgeX, -hh), geom.V(s.edgeX, hh)}
	} else {
		pts = make([]geom.Vec2, 0, steps+1)
		for i := 0; i <= steps; i++ {
			a := s.start + s.sweep*float64(i)/float64(steps)
			pts = append(pts, geom.V(s.center.X+s.radius*math.Cos(a), s.center.Y+s.radius*math.Sin(a)))
		}
		if pts[0].Y > pts[len(pts)-1].Y {
			reverse(pts)
		}
	}
	if upward {
		reverse(pts)
	}
	return pts
}

func reverse(pts []geom.Vec2) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
