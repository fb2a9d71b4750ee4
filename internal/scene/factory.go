package scene

import (
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/shape"
)

// AddPolygon builds a polygon from world-space points under a fresh id and adds it.
func (s *Scene) AddPolygon(points []geom.Vec2, mat material.Material) (*shape.Object, error) {
	obj, err := shape.NewPolygonObject(s.newID(), points, mat)
	if err != nil {
		return nil, err
	}
	if err := s.Add(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// AddLens builds a lens centred on position under a fresh id and adds it.
func (s *Scene) AddLens(lens shape.Lens, position geom.Vec2, height, rotation float64, mat material.Material) (*shape.Object, error) {
	obj, err := shape.NewLensObject(s.newID(), lens, position, height, rotation, mat)
	if err != nil {
		return nil, err
	}
	if err := s.Add(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Bounds returns the union of the bounding rects of ids, or of every object
// when ids is empty.
func (s *Scene) Bounds(ids ...string) (geom.Rect, error) {
	if err := s.requireAll(ids); err != nil {
		return geom.Rect{}, err
	}
	objs := s.objects
	if len(ids) > 0 {
		objs = make([]*shape.Object, 0, len(ids))
		for _, id := range ids {
			objs = append(objs, s.objects[s.indexOf(id)])
		}
	}
	var r geom.Rect
	for _, o := range objs {
		r = r.Union(o.BoundingRect())
	}
	return r, nil
}

// ObjectAt returns the most recently added object whose bounding rect contains p.
func (s *Scene) ObjectAt(p geom.Vec2) (*shape.Object, bool) {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].BoundingRect().Contains(p) {
			return s.objects[i], true
		}
	}
	return nil, false
}
