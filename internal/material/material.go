// Package material describes dielectric media by a two-term Cauchy dispersion model
// and resolves the effective medium of overlapping shapes.
package material

import (
	"errors"
	"fmt"
)

var ErrUnknownMaterial = errors.New("unknown material")

// Material is an immutable medium description. Refractive index at wavelength λ (nm)
// is A + B/λ².
type Material struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	// Overlaps marks materials that add up with other overlapping materials.
	// When false, only the most recently entered such material counts.
	Overlaps    bool   `json:"overlaps"`
	StrokeColor string `json:"strokeColor"`
	FillColor   string `json:"fillColor"`
}

// IndexAt returns the refractive index at the given wavelength in nanometers.
func (m Material) IndexAt(wavelengthNm float64) float64 {
	return IndexAt(m.A, m.B, wavelengthNm)
}

// Coefficients returns the dispersion coefficients of the material.
func (m Material) Coefficients() Coefficients {
	return Coefficients{A: m.A, B: m.B}
}

var (
	Glass = Material{
		ID:          "glass",
		DisplayName: "Glass",
		A:           1.5046,
		B:           0.0042,
		Overlaps:    true,
		StrokeColor: "rgba(197,216,235,0.8)",
		FillColor:   "rgba(197,216,235,0.2)",
	}
	ExaggeratedGlass = Material{
		ID:          "exaggerated-glass",
		DisplayName: "Exaggerated Glass",
		A:           1.5,
		B:           4000,
		Overlaps:    true,
		StrokeColor: "rgba(207,226,255,0.9)",
		FillColor:   "rgba(197,216,255,0.2)",
	}
	Mirror = Material{
		ID:          "mirror",
		DisplayName: "Mirror",
		A:           0,
		B:           0,
		Overlaps:    true,
		StrokeColor: "rgba(255,255,255,1)",
		FillColor:   "rgba(200,200,200,1)",
	}
	Water = Material{
		ID:          "water",
		DisplayName: "Water",
		A:           1.324,
		B:           0.0031,
		Overlaps:    false,
		StrokeColor: "rgba(64,164,223,0.8)",
		FillColor:   "rgba(64,164,223,0.2)",
	}
	Air = Material{
		ID:          "air",
		DisplayName: "Air",
		A:           1.000293,
		B:           0,
		Overlaps:    false,
		StrokeColor: "rgba(255,255,255,0.2)",
		FillColor:   "rgba(255,255,255,0.1)",
	}
	Vacuum = Material{
		ID:          "vacuum",
		DisplayName: "Vacuum",
		A:           1,
		B:           0,
		Overlaps:    false,
		StrokeColor: "rgba(255,255,255,0.2)",
		FillColor:   "rgba(0,0,0,0.5)",
	}
)

// Default is used for new shapes when the caller does not pick a material.
var Default = ExaggeratedGlass

// All returns the preset materials in display order.
func All() []Material {
	return []Material{Glass, ExaggeratedGlass, Mirror, Water, Air, Vacuum}
}

// Lookup returns the preset with the given id.
func Lookup(id string) (Material, error) {
	for _, m := range All() {
		if m.ID == id {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, id)
}
