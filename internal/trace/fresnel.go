package trace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/prismanis/prismanis/internal/geom"
)

// Interaction is the outcome of a ray meeting a boundary between two media.
type Interaction struct {
	Reflected geom.Vec2
	// Refracted is only meaningful when TotalInternal is false.
	Refracted geom.Vec2
	// Reflectance is the reflected share of the incident energy, in [0,1].
	// It is 1 under total internal reflection.
	Reflectance   float64
	TotalInternal bool
}

// Snell splits a unit direction at a boundary with the given normal, going from
// index n1 into index n2. The normal may face either side.
func Snell(dir, normal geom.Vec2, n1, n2 float64) Interaction {
	cosI := -r2.Dot(dir, normal)
	if cosI < 0 {
		cosI = -cosI
		normal = r2.Scale(-1, normal)
	}
	cosI = min(cosI, 1)

	sin2I := max(0, 1-cosI*cosI)
	ratio := n1 / n2
	sin2T := ratio * ratio * sin2I

	out := Interaction{
		Reflected:   geom.Normalize(r2.Add(dir, r2.Scale(2*cosI, normal))),
		Reflectance: 1,
	}
	// Written negated so a NaN ratio (n2 == 0, a mirror) also reflects.
	if !(sin2T <= 1) {
		out.TotalInternal = true
		return out
	}

	cosT := math.Sqrt(1 - sin2T)
	out.Refracted = geom.Normalize(r2.Add(r2.Scale(ratio, dir), r2.Scale(ratio*cosI-cosT, normal)))
	out.Reflectance = Reflectance(n1, n2, cosI, cosT)
	return out
}

// Reflectance is the unpolarized Fresnel reflectance, the mean of the squared
// s and p amplitude coefficients, clamped to [0,1].
func Reflectance(n1, n2, cosI, cosT float64) float64 {
	rs := (n1*cosI - n2*cosT) / (n1*cosI + n2*cosT)
	rp := (n1*cosT - n2*cosI) / (n1*cosT + n2*cosI)
	r := (rs*rs + rp*rp) / 2
	if math.IsNaN(r) {
		return 1
	}
	return max(0, min(1, r))
}

// CriticalAngle returns the incidence angle above which light going from n1 into
// n2 is totally reflected, or π/2 when n2 >= n1.
func CriticalAngle(n1, n2 float64) float64 {
	return math.Asin(min(1, n2/n1))
}
