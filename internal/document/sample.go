package document

import (
	"math"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/scene"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/typeid"
)

// NewSampleScene builds a dispersing prism and a converging lens lit by a
// sunlight beam and a laser. The additions are not undoable.
func NewSampleScene() (*scene.Scene, []Light, error) {
	s := scene.New()

	// Equilateral prism, apex up.
	side := 200.0
	h := side * math.Sqrt(3) / 2
	if _, err := s.AddPolygon([]geom.Vec2{
		geom.V(400, 300-h/2),
		geom.V(400+side/2, 300+h/2),
		geom.V(400-side/2, 300+h/2),
	}, material.ExaggeratedGlass); err != nil {
		return nil, nil, err
	}

	if _, err := s.AddLens(shape.Lens{R1: 150, R2: 150, Thickness: 20}, geom.V(800, 360), 160, 0, material.Glass); err != nil {
		return nil, nil, err
	}

	lights := []Light{
		{
			ID:       typeid.NewLightID(),
			Name:     "Sun",
			Preset:   trace.PresetSunlight,
			Position: Point{X: 100, Y: 330},
			Angle:    -0.12,
		},
		{
			ID:       typeid.NewLightID(),
			Name:     "Laser",
			Preset:   trace.PresetLaser,
			Position: Point{X: 560, Y: 380},
			Angle:    0,
		},
	}

	if err := s.ClearHistory(); err != nil {
		return nil, nil, err
	}
	return s, lights, nil
}
