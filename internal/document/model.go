package document

import (
	"math"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func PointOf(v geom.Vec2) Point { return Point{X: v.X, Y: v.Y} }

func (p Point) Vec() geom.Vec2 { return geom.V(p.X, p.Y) }

func PointsOf(vs []geom.Vec2) []Point {
	out := make([]Point, len(vs))
	for i, v := range vs {
		out[i] = PointOf(v)
	}
	return out
}

func Vecs(ps []Point) []geom.Vec2 {
	out := make([]geom.Vec2, len(ps))
	for i, p := range ps {
		out[i] = p.Vec()
	}
	return out
}

type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
}

func TransformOf(t geom.Transform) Transform {
	return Transform{
		X:        t.Position.X,
		Y:        t.Position.Y,
		Rotation: t.Rotation,
		Width:    t.BaseSize.X,
		Height:   t.BaseSize.Y,
		ScaleX:   t.Scale.X,
		ScaleY:   t.Scale.Y,
	}
}

func (t Transform) Geom() geom.Transform {
	return geom.Transform{
		Position: geom.V(t.X, t.Y),
		Rotation: t.Rotation,
		BaseSize: geom.V(t.Width, t.Height),
		Scale:    geom.V(t.ScaleX, t.ScaleY),
	}
}

// LensSpec is the wire form of a lens. JSON has no infinity, so a radius of 0
// stands for a flat side.
type LensSpec struct {
	R1              float64 `json:"r1"`
	R2              float64 `json:"r2"`
	MiddleThickness float64 `json:"middleThickness"`
}

func LensSpecOf(l shape.Lens) LensSpec {
	return LensSpec{R1: flatToZero(l.R1), R2: flatToZero(l.R2), MiddleThickness: l.Thickness}
}

func (l LensSpec) Shape() shape.Lens {
	return shape.Lens{R1: zeroToFlat(l.R1), R2: zeroToFlat(l.R2), Thickness: l.MiddleThickness}
}

func flatToZero(r float64) float64 {
	if math.IsInf(r, 0) {
		return 0
	}
	return r
}

func zeroToFlat(r float64) float64 {
	if r == 0 {
		return math.Inf(1)
	}
	return r
}

type Object struct {
	ID        string     `json:"id"`
	Kind      shape.Kind `json:"kind"`
	Material  string     `json:"material"`
	Transform Transform  `json:"transform"`
	Points    []Point    `json:"points,omitempty"`
	Lens      *LensSpec  `json:"lens,omitempty"`
	Outline   []Point    `json:"outline"`
	Bounds    geom.Rect  `json:"bounds"`
	Selected  bool       `json:"selected"`
}

// OutlineSteps is the number of segments each lens arc is sampled with.
const OutlineSteps = 32

func ObjectOf(o *shape.Object, selected bool) Object {
	out := Object{
		ID:        o.ID,
		Kind:      o.Kind,
		Material:  o.Material.ID,
		Transform: TransformOf(o.Transform),
		Outline:   PointsOf(o.Outline(OutlineSteps)),
		Bounds:    o.BoundingRect(),
		Selected:  selected,
	}
	switch o.Kind {
	case shape.KindPolygon:
		out.Points = PointsOf(o.Polygon.Points)
	case shape.KindLens:
		spec := LensSpecOf(*o.Lens)
		out.Lens = &spec
	}
	return out
}

type Light struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Preset   string  `json:"preset"`
	Position Point   `json:"position"`
	Angle    float64 `json:"angle"`
}

func (l Light) Anchor() trace.Anchor {
	return trace.AnchorAt(l.Position.Vec(), l.Angle)
}

func (l Light) Sources() ([]trace.RaySource, error) {
	return trace.Preset(l.Preset)
}

type Segment struct {
	Points       []Point `json:"points"`
	WavelengthNm float64 `json:"wavelengthNm"`
	Energy       float64 `json:"energy"`
	Color        string  `json:"color"`
}

func SegmentsOf(segs []trace.Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{
			Points:       PointsOf(s.Points),
			WavelengthNm: s.WavelengthNm,
			Energy:       s.Energy,
			Color:        material.WavelengthToRGB(s.WavelengthNm).CSS(s.Energy),
		}
	}
	return out
}

type Snapshot struct {
	Objects    []Object `json:"objects"`
	Lights     []Light  `json:"lights"`
	Selection  []string `json:"selection"`
	CanUndo    bool     `json:"canUndo"`
	CanRedo    bool     `json:"canRedo"`
	InProgress bool     `json:"inProgress"`
}

type TraceResult struct {
	Segments []Segment `json:"segments"`
	Mode     string    `json:"mode"`
}

// --- Requests ---

type PolygonInput struct {
	Points   []Point `json:"points"`
	Material string  `json:"material"`
}

type LensInput struct {
	LensSpec
	Position Point   `json:"position"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Material string  `json:"material"`
}

// TransformInput moves and turns a group of objects as one undoable step.
type TransformInput struct {
	IDs       []string `json:"ids"`
	Translate Point    `json:"translate"`
	Rotate    float64  `json:"rotate"`
}

type LightInput struct {
	Name     string  `json:"name"`
	Preset   string  `json:"preset"`
	Position Point   `json:"position"`
	Angle    float64 `json:"angle"`
}

type SelectionInput struct {
	IDs []string `json:"ids"`
}

// ResizeInput drags one corner of an object. Corner is one of topLeft,
// topRight, bottomRight, bottomLeft.
type ResizeInput struct {
	Corner string  `json:"corner"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type MoveLightInput struct {
	Position Point   `json:"position"`
	Angle    float64 `json:"angle"`
}

type ModeInput struct {
	Mode string `json:"mode"`
}
