package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/scene"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/typeid"
)

var ErrLightNotFound = errors.New("light not found")

// Engine owns a scene, its lights and the cached trace of those lights.
// It processes commands from the frontend and answers queries.
// An Engine is not safe for concurrent use.
type Engine struct {
	scene  *scene.Scene
	lights []document.Light
	tracer *trace.Tracer

	// Last trace, valid while dirty is false
	segments []trace.Segment
	dirty    bool
}

// NewEngine creates an engine over an empty scene.
func NewEngine(limits trace.Limits, mode trace.Mode) *Engine {
	return &Engine{
		scene:  scene.New(),
		tracer: trace.New(limits, mode),
		dirty:  true,
	}
}

// --- Commands (frontend → backend) ---

// LoadSample replaces the scene and lights with the built-in sample.
func (e *Engine) LoadSample() error {
	s, lights, err := document.NewSampleScene()
	if err != nil {
		return err
	}
	e.scene = s
	e.lights = lights
	e.dirty = true
	return nil
}

// Reset empties the scene, its history and the lights.
func (e *Engine) Reset() {
	e.scene = scene.New()
	e.lights = nil
	e.dirty = true
}

// SetMode switches the transport algorithm.
func (e *Engine) SetMode(mode trace.Mode) {
	if mode != e.tracer.Mode() {
		e.tracer = trace.New(e.tracer.Limits(), mode)
		e.dirty = true
	}
}

// AddPolygon adds a polygon built from world-space points and returns its id.
func (e *Engine) AddPolygon(in document.PolygonInput) (string, error) {
	mat, err := lookupMaterial(in.Material)
	if err != nil {
		return "", err
	}
	obj, err := e.scene.AddPolygon(document.Vecs(in.Points), mat)
	if err != nil {
		return "", err
	}
	e.dirty = true
	return obj.ID, nil
}

// AddLens adds a lens and returns its id.
func (e *Engine) AddLens(in document.LensInput) (string, error) {
	mat, err := lookupMaterial(in.Material)
	if err != nil {
		return "", err
	}
	obj, err := e.scene.AddLens(in.LensSpec.Shape(), in.Position.Vec(), in.Height, in.Rotation, mat)
	if err != nil {
		return "", err
	}
	e.dirty = true
	return obj.ID, nil
}

func lookupMaterial(id string) (material.Material, error) {
	if id == "" {
		return material.Default, nil
	}
	return material.Lookup(id)
}

// RemoveObjects removes the objects as one undoable step.
func (e *Engine) RemoveObjects(ids ...string) error {
	if err := e.scene.Remove(ids...); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// StartTransform opens a live transform over ids and returns its history index.
func (e *Engine) StartTransform(ids []string) (int, error) {
	return e.scene.StartTransform(ids)
}

// Translate moves objects by (dx, dy).
func (e *Engine) Translate(ids []string, dx, dy float64) error {
	if err := e.scene.TranslateObjects(ids, geom.V(dx, dy)); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Rotate turns objects about their own centres.
func (e *Engine) Rotate(ids []string, delta float64) error {
	if err := e.scene.RotateObjects(ids, delta); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Resize drags one corner of an object to a new size.
func (e *Engine) Resize(id string, corner geom.Corner, width, height float64) error {
	if err := e.scene.ResizeObject(id, corner, geom.V(width, height)); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// EndTransform closes the live transform opened at index.
func (e *Engine) EndTransform(index int) error {
	return e.scene.EndTransform(index)
}

// ApplyTransform translates then rotates a group of objects as a single
// undoable step.
func (e *Engine) ApplyTransform(in document.TransformInput) error {
	idx, err := e.scene.StartTransform(in.IDs)
	if err != nil {
		return err
	}
	editErr := e.Translate(in.IDs, in.Translate.X, in.Translate.Y)
	if editErr == nil && in.Rotate != 0 {
		editErr = e.Rotate(in.IDs, in.Rotate)
	}
	if err := e.scene.EndTransform(idx); err != nil {
		return err
	}
	return editErr
}

// Undo reverts the last scene action.
func (e *Engine) Undo() error {
	if err := e.scene.Undo(); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Redo reapplies the last undone scene action.
func (e *Engine) Redo() error {
	if err := e.scene.Redo(); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// SetSelection replaces the selection. An empty list deselects everything.
func (e *Engine) SetSelection(ids []string) error {
	if len(ids) == 0 {
		e.scene.Deselect()
		return nil
	}
	return e.scene.SelectOnly(ids...)
}

// AddToSelection extends the selection.
func (e *Engine) AddToSelection(ids []string) error {
	return e.scene.AddToSelection(ids...)
}

// AddLight places a light and returns it with its new id.
func (e *Engine) AddLight(in document.LightInput) (document.Light, error) {
	if _, err := trace.Preset(in.Preset); err != nil {
		return document.Light{}, err
	}
	l := document.Light{
		ID:       typeid.NewLightID(),
		Name:     in.Name,
		Preset:   in.Preset,
		Position: in.Position,
		Angle:    in.Angle,
	}
	e.lights = append(e.lights, l)
	e.dirty = true
	return l, nil
}

// MoveLight repositions and re-aims a light.
func (e *Engine) MoveLight(id string, position document.Point, angle float64) error {
	i := e.lightIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	e.lights[i].Position = position
	e.lights[i].Angle = angle
	e.dirty = true
	return nil
}

// RemoveLight deletes a light.
func (e *Engine) RemoveLight(id string) error {
	i := e.lightIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	e.lights = slices.Delete(e.lights, i, i+1)
	e.dirty = true
	return nil
}

func (e *Engine) lightIndex(id string) int {
	return slices.IndexFunc(e.lights, func(l document.Light) bool { return l.ID == id })
}

// --- Queries (frontend ← backend) ---

// Trace returns the segments of every light, re-tracing only after a change.
func (e *Engine) Trace() []trace.Segment {
	if e.dirty {
		objects := e.scene.Objects()
		var segs []trace.Segment
		for _, l := range e.lights {
			sources, err := l.Sources()
			if err != nil {
				continue
			}
			segs = append(segs, e.tracer.Trace(objects, l.Anchor(), sources)...)
		}
		e.segments = segs
		e.dirty = false
	}
	return e.segments
}

// TraceResult returns the current trace in wire form.
func (e *Engine) TraceResult() document.TraceResult {
	return document.TraceResult{
		Segments: document.SegmentsOf(e.Trace()),
		Mode:     e.tracer.Mode().String(),
	}
}

// Snapshot returns the scene, lights and history state in wire form.
func (e *Engine) Snapshot() document.Snapshot {
	objects := e.scene.Objects()
	snap := document.Snapshot{
		Objects:    make([]document.Object, 0, len(objects)),
		Lights:     slices.Clone(e.lights),
		Selection:  e.scene.Selection(),
		CanUndo:    e.scene.CanUndo(),
		CanRedo:    e.scene.CanRedo(),
		InProgress: e.scene.InProgress(),
	}
	for _, o := range objects {
		snap.Objects = append(snap.Objects, document.ObjectOf(o, e.scene.IsSelected(o.ID)))
	}
	if snap.Lights == nil {
		snap.Lights = []document.Light{}
	}
	return snap
}

// Scene exposes the underlying scene for read-only use.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Lights returns a copy of the lights.
func (e *Engine) Lights() []document.Light {
	return slices.Clone(e.lights)
}

// Render returns the draw commands for the scene and its light as JSON.
func (e *Engine) Render() string {
	commands := CompileDrawCommands(e.scene, e.Trace())
	result, _ := DrawCommandsToJSON(commands)
	return result
}

// HitTest returns the id of the topmost object whose bounds contain (x, y),
// or an empty string.
func (e *Engine) HitTest(x, y float64) string {
	if o, ok := e.scene.ObjectAt(geom.V(x, y)); ok {
		return o.ID
	}
	return ""
}

// SelectionBounds returns the combined bounding box of the selection.
func (e *Engine) SelectionBounds() geom.Rect {
	sel := e.scene.Selection()
	if len(sel) == 0 {
		return geom.Rect{}
	}
	r, _ := e.scene.Bounds(sel...)
	return r
}

// GetSnapshot returns Snapshot as JSON.
func (e *Engine) GetSnapshot() string {
	data, _ := json.Marshal(e.Snapshot())
	return string(data)
}

// GetTrace returns TraceResult as JSON.
func (e *Engine) GetTrace() string {
	data, _ := json.Marshal(e.TraceResult())
	return string(data)
}

// GetSelectionBounds returns SelectionBounds as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(e.SelectionBounds())
}
