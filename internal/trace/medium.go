package trace

import (
	"slices"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/shape"
)

type membership struct {
	id  string
	mat material.Material
}

// Medium is the set of objects a ray is inside, keyed by object id and kept in
// the order they were entered. Values are immutable; With and Without return
// new media.
type Medium struct {
	members []membership
}

// Contains reports whether the object id is part of the medium.
func (m Medium) Contains(id string) bool {
	return slices.ContainsFunc(m.members, func(e membership) bool { return e.id == id })
}

// Len returns the number of objects in the medium.
func (m Medium) Len() int { return len(m.members) }

// With returns the medium after entering obj.
func (m Medium) With(obj *shape.Object) Medium {
	if m.Contains(obj.ID) {
		return m
	}
	members := make([]membership, len(m.members), len(m.members)+1)
	copy(members, m.members)
	return Medium{members: append(members, membership{id: obj.ID, mat: obj.Material})}
}

// Without returns the medium after leaving the object id.
func (m Medium) Without(id string) Medium {
	members := make([]membership, 0, len(m.members))
	for _, e := range m.members {
		if e.id != id {
			members = append(members, e)
		}
	}
	return Medium{members: members}
}

// Coefficients resolves the effective dispersion of the medium.
func (m Medium) Coefficients() material.Coefficients {
	mats := make([]material.Material, len(m.members))
	for i, e := range m.members {
		mats[i] = e.mat
	}
	return material.Effective(mats)
}

// IndexAt returns the effective refractive index at the given wavelength.
func (m Medium) IndexAt(wavelengthNm float64) float64 {
	return m.Coefficients().IndexAt(wavelengthNm)
}

// MediumAt seeds a medium with every object that contains p, in scene order.
func MediumAt(objects []*shape.Object, p geom.Vec2) Medium {
	var m Medium
	for _, o := range objects {
		if o.ContainsPoint(p) {
			m = m.With(o)
		}
	}
	return m
}
