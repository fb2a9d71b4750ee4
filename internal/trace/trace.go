// Package trace propagates light through a scene of optical objects.
//
// A ray is followed breadth first. Each boundary it meets splits it into a
// reflected and a refracted child weighted by Fresnel reflectance, until the
// energy, depth or segment limits stop it. Tracing never fails: degenerate
// geometry is skipped and numerical overshoot is clamped.
package trace

import (
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
)

// Limits bound the work done for a single ray source.
type Limits struct {
	// MaxDepth is the number of boundary interactions after which a branch is dropped.
	MaxDepth int
	// MaxSegments stops a trace once more segments than this were emitted.
	MaxSegments int
	// MinEnergy drops branches whose energy falls below it.
	MinEnergy float64
	// Nudge moves a ray forward before each intersection query so it does not
	// hit the surface it just left.
	Nudge float64
	// EscapeLength is how far a ray that hits nothing is drawn.
	EscapeLength float64
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:     50,
		MaxSegments:  5000,
		MinEnergy:    2e-4,
		Nudge:        0.01,
		EscapeLength: 5000,
	}
}

// Mode selects the transport algorithm.
type Mode int

const (
	// ModeFresnel splits every boundary into reflected and refracted children.
	ModeFresnel Mode = iota
	// ModeCritical follows a single ray that either refracts or, past the
	// critical angle, reflects. Energy is never split.
	ModeCritical
)

func (m Mode) String() string {
	switch m {
	case ModeFresnel:
		return "fresnel"
	case ModeCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name back to its Mode. Unknown names yield ModeFresnel.
func ParseMode(s string) Mode {
	if s == ModeCritical.String() {
		return ModeCritical
	}
	return ModeFresnel
}

// Segment is a polyline of light at one wavelength and energy.
type Segment struct {
	Points       []geom.Vec2 `json:"points"`
	WavelengthNm float64     `json:"wavelengthNm"`
	Energy       float64     `json:"energy"`
}

// Tracer runs traces with fixed limits and mode. The zero value is not usable;
// build one with New.
type Tracer struct {
	limits Limits
	mode   Mode
}

// New returns a tracer.
func New(limits Limits, mode Mode) *Tracer {
	return &Tracer{limits: limits, mode: mode}
}

// Limits returns the tracer's limits.
func (t *Tracer) Limits() Limits { return t.limits }

// Mode returns the tracer's mode.
func (t *Tracer) Mode() Mode { return t.mode }

// Trace emits every source from the anchor and returns all segments, source by
// source. objects must not change during the call.
func (t *Tracer) Trace(objects []*shape.Object, anchor Anchor, sources []RaySource) []Segment {
	var out []Segment
	for _, src := range sources {
		origin, dir := anchor.Launch(src)
		out = append(out, t.Shoot(objects, origin, dir, src.WavelengthNm, src.Energy)...)
	}
	return out
}

// Shoot traces one ray from origin along dir.
func (t *Tracer) Shoot(objects []*shape.Object, origin, dir geom.Vec2, wavelengthNm, energy float64) []Segment {
	if t.mode == ModeCritical {
		return []Segment{t.shootCritical(objects, origin, dir, wavelengthNm, energy)}
	}
	return t.shootFresnel(objects, origin, dir, wavelengthNm, energy)
}

type hit struct {
	shape.Hit
	object *shape.Object
}

// nearest returns the closest boundary crossing over all objects.
func nearest(objects []*shape.Object, origin, dir geom.Vec2) (hit, bool) {
	var best hit
	found := false
	for _, o := range objects {
		h, ok := o.Intersect(origin, dir)
		if !ok || (found && h.T >= best.T) {
			continue
		}
		best, found = hit{Hit: h, object: o}, true
	}
	return best, found
}
