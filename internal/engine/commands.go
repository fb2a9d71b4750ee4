package engine

import (
	"encoding/json"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/scene"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path" or "ray"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Selected    bool          `json:"selected,omitempty"`    // Draw selection handles
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []interface{}

const (
	outlineWidth = 1.5
	rayWidth     = 1
)

// CompileDrawCommands generates a draw command buffer for a scene and its rays.
// Objects come first in insertion order, rays are drawn on top.
func CompileDrawCommands(s *scene.Scene, segments []trace.Segment) []DrawCommand {
	objects := s.Objects()
	commands := make([]DrawCommand, 0, len(objects)+len(segments))
	for _, o := range objects {
		commands = append(commands, objectCommand(o, s.IsSelected(o.ID)))
	}
	for _, seg := range segments {
		commands = append(commands, DrawCommand{
			Op:          "ray",
			Path:        polyline(seg.Points, false),
			Stroke:      material.WavelengthToRGB(seg.WavelengthNm).CSS(seg.Energy),
			StrokeWidth: rayWidth,
		})
	}
	return commands
}

// objectCommand draws polygons in their local frame under the object's matrix.
// Lenses are drawn from their world-space outline, since their profile does
// not follow the transform's scale.
func objectCommand(o *shape.Object, selected bool) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    o.ID,
		Fill:        o.Material.FillColor,
		Stroke:      o.Material.StrokeColor,
		StrokeWidth: outlineWidth,
		Selected:    selected,
	}
	if o.Kind == shape.KindPolygon {
		cmd.Transform = o.Transform.Matrix().ToSlice()
		cmd.Path = polyline(o.Polygon.Points, true)
	} else {
		cmd.Path = polyline(o.Outline(document.OutlineSteps), true)
	}
	return cmd
}

func polyline(points []geom.Vec2, closed bool) []PathCommand {
	path := make([]PathCommand, 0, len(points)+1)
	for i, p := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
