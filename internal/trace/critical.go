package trace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
)

// shootCritical follows a single polyline. At each boundary the ray refracts
// unless its incidence exceeds the critical angle, in which case it reflects.
func (t *Tracer) shootCritical(objects []*shape.Object, origin, dir geom.Vec2, wavelengthNm, energy float64) Segment {
	lim := t.limits
	seg := Segment{Points: []geom.Vec2{origin}, WavelengthNm: wavelengthNm, Energy: energy}
	medium := MediumAt(objects, origin)

	at, d := origin, geom.Normalize(dir)
	for range lim.MaxDepth {
		at = geom.Along(at, d, lim.Nudge)
		h, ok := nearest(objects, at, d)
		if !ok {
			seg.Points = append(seg.Points, geom.Along(at, d, lim.EscapeLength))
			break
		}
		seg.Points = append(seg.Points, h.Point)
		at = h.Point

		crossed := medium.With(h.object)
		if medium.Contains(h.object.ID) {
			crossed = medium.Without(h.object.ID)
		}
		n1 := medium.IndexAt(wavelengthNm)
		n2 := crossed.IndexAt(wavelengthNm)

		normal := geom.Normalize(h.Normal)
		if r2.Dot(normal, d) > 0 {
			normal = r2.Scale(-1, normal)
		}
		cosI := max(-1, min(1, -r2.Dot(normal, d)))
		sinI := math.Sqrt(max(0, 1-cosI*cosI))
		reflected := r2.Add(d, r2.Scale(2*cosI, normal))

		if math.Asin(sinI) > CriticalAngle(n1, n2) {
			d = geom.Normalize(reflected)
			continue
		}
		sinT := n1 / n2 * sinI
		if !(sinT <= 1) {
			d = geom.Normalize(reflected)
			continue
		}
		cosT := math.Sqrt(1 - sinT*sinT)
		d = geom.Normalize(r2.Add(r2.Scale(n1/n2, d), r2.Scale(n1/n2*cosI-cosT, normal)))
		medium = crossed
	}

	Logger().Debug("traced ray", "mode", ModeCritical.String(), "wavelengthNm", wavelengthNm, "points", len(seg.Points))
	return seg
}
