package trace

import (
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
)

type node struct {
	at     geom.Vec2
	dir    geom.Vec2
	energy float64
	medium Medium
	depth  int
}

func (t *Tracer) shootFresnel(objects []*shape.Object, origin, dir geom.Vec2, wavelengthNm, energy float64) []Segment {
	lim := t.limits
	var segments []Segment
	truncated := false

	queue := []node{{at: origin, dir: dir, energy: energy, medium: MediumAt(objects, origin)}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n.energy < lim.MinEnergy || n.depth > lim.MaxDepth {
			continue
		}
		if len(segments) > lim.MaxSegments {
			truncated = true
			break
		}

		d := geom.Normalize(n.dir)
		at := geom.Along(n.at, d, lim.Nudge)

		h, ok := nearest(objects, at, d)
		if !ok {
			segments = append(segments, Segment{
				Points:       []geom.Vec2{at, geom.Along(at, d, lim.EscapeLength)},
				WavelengthNm: wavelengthNm,
				Energy:       n.energy,
			})
			continue
		}
		segments = append(segments, Segment{
			Points:       []geom.Vec2{at, h.Point},
			WavelengthNm: wavelengthNm,
			Energy:       n.energy,
		})

		crossed := n.medium.With(h.object)
		if n.medium.Contains(h.object.ID) {
			crossed = n.medium.Without(h.object.ID)
		}
		n1 := n.medium.IndexAt(wavelengthNm)
		n2 := crossed.IndexAt(wavelengthNm)

		in := Snell(d, h.Normal, n1, n2)
		queue = append(queue, node{
			at:     h.Point,
			dir:    in.Reflected,
			energy: n.energy * in.Reflectance,
			medium: n.medium,
			depth:  n.depth + 1,
		})
		if !in.TotalInternal {
			queue = append(queue, node{
				at:     h.Point,
				dir:    in.Refracted,
				energy: n.energy * (1 - in.Reflectance),
				medium: crossed,
				depth:  n.depth + 1,
			})
		}
	}

	log := Logger()
	log.Debug("traced ray", "wavelengthNm", wavelengthNm, "energy", energy, "segments", len(segments))
	if truncated {
		log.Warn("ray tree truncated by segment cap", "wavelengthNm", wavelengthNm, "maxSegments", lim.MaxSegments)
	}
	return segments
}
