package trace

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/prismanis/prismanis/internal/geom"
)

var ErrUnknownPreset = errors.New("unknown light preset")

// RaySource describes one ray emitted by a light, relative to the light's anchor.
type RaySource struct {
	WavelengthNm float64 `json:"wavelengthNm"`
	// Energy is the starting opacity of the ray, in [0,1].
	Energy float64 `json:"energy"`
	// AngleOffset turns the ray counter-clockwise from the anchor's facing, in radians.
	AngleOffset float64 `json:"angleOffset"`
	// StartOffset is in the light's local frame, where +X is the facing direction.
	StartOffset *geom.Vec2 `json:"startOffset,omitempty"`
}

// Anchor places a light in the world. Facing must be a unit vector.
type Anchor struct {
	Position geom.Vec2 `json:"position"`
	Facing   geom.Vec2 `json:"facing"`
}

// AnchorAt returns an anchor facing the given angle, measured from +X.
func AnchorAt(position geom.Vec2, angle float64) Anchor {
	return Anchor{Position: position, Facing: geom.V(math.Cos(angle), math.Sin(angle))}
}

// Launch returns the world-space origin and direction of src.
func (a Anchor) Launch(src RaySource) (origin, dir geom.Vec2) {
	origin = a.Position
	if src.StartOffset != nil {
		origin = r2.Add(origin, geom.Rotate(*src.StartOffset, geom.Angle(a.Facing)))
	}
	return origin, geom.Rotate(a.Facing, src.AngleOffset)
}

const (
	PresetSunlight      = "sunlight"
	PresetLaser         = "laser"
	PresetFlashlight    = "flashlight"
	PresetLamp          = "lamp"
	PresetFloodlight    = "floodlight"
	PresetFloodSunlight = "floodsunlight"
)

var sunlightSpectrum = []RaySource{
	{WavelengthNm: 380, Energy: 0.05},
	{WavelengthNm: 420, Energy: 0.12},
	{WavelengthNm: 460, Energy: 0.18},
	{WavelengthNm: 500, Energy: 0.2},
	{WavelengthNm: 540, Energy: 0.196},
	{WavelengthNm: 580, Energy: 0.17},
	{WavelengthNm: 620, Energy: 0.12},
	{WavelengthNm: 660, Energy: 0.07},
	{WavelengthNm: 700, Energy: 0.036},
	{WavelengthNm: 740, Energy: 0.01},
}

var presets = map[string]func() []RaySource{
	PresetSunlight: func() []RaySource {
		return slices.Clone(sunlightSpectrum)
	},
	PresetLaser: func() []RaySource {
		return []RaySource{{WavelengthNm: 700, Energy: 1}}
	},
	PresetFlashlight: func() []RaySource {
		// ±1° spread
		out := make([]RaySource, 41)
		for i := range out {
			angle := (float64(i)/20*2 - 1) * math.Pi / 180
			out[i] = RaySource{WavelengthNm: 600, Energy: 0.05, AngleOffset: angle}
		}
		return out
	},
	PresetLamp: func() []RaySource {
		out := make([]RaySource, 360)
		for i := range out {
			out[i] = RaySource{WavelengthNm: 600, Energy: 0.08, AngleOffset: float64(i) * math.Pi / 180}
		}
		return out
	},
	PresetFloodlight: func() []RaySource {
		out := make([]RaySource, 81)
		for i := range out {
			offset := geom.V(0, float64(i-40)*3)
			out[i] = RaySource{WavelengthNm: 600, Energy: 0.05, StartOffset: &offset}
		}
		return out
	},
	PresetFloodSunlight: func() []RaySource {
		out := make([]RaySource, 0, 41*len(sunlightSpectrum))
		for i := range 41 {
			for _, s := range sunlightSpectrum {
				offset := geom.V(0, float64(i-20))
				s.Energy *= 0.4
				s.StartOffset = &offset
				out = append(out, s)
			}
		}
		return out
	},
}

// Preset returns a fresh copy of the named ray configuration.
func Preset(name string) ([]RaySource, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return build(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
