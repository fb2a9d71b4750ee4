// Package scene owns the optical objects of a workspace together with the
// selection and an undo/redo history of add, remove and transform actions.
//
// A Scene is not safe for concurrent use. Hosts that share one between
// goroutines must guard the whole value, objects and history together, with a
// single lock.
package scene

import (
	"errors"
	"fmt"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/typeid"
)

var (
	ErrObjectNotFound        = errors.New("object not found")
	ErrDuplicateID           = errors.New("duplicate object id")
	ErrNothingToUndo         = errors.New("nothing to undo")
	ErrNothingToRedo         = errors.New("nothing to redo")
	ErrTransformInProgress   = errors.New("transform in progress")
	ErrNoTransformInProgress = errors.New("no transform in progress")
	ErrBadActionIndex        = errors.New("bad action index")
)

// Scene holds objects in stable insertion order.
type Scene struct {
	objects  []*shape.Object
	ids      map[string]struct{} // every id ever added; ids are never reused
	selected []string

	past       []Action
	future     []Action
	inProgress bool

	newID func() string
}

// New returns an empty scene that names new objects with prefixed type ids.
func New() *Scene {
	return &Scene{
		ids:   make(map[string]struct{}),
		newID: typeid.NewObjectID,
	}
}

// Objects returns the current objects in insertion order. The slice is a copy;
// the objects are not.
func (s *Scene) Objects() []*shape.Object {
	return append([]*shape.Object(nil), s.objects...)
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Object returns the object with the given id.
func (s *Scene) Object(id string) (*shape.Object, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return s.objects[i], nil
}

// ObjectExists reports whether id names a current object.
func (s *Scene) ObjectExists(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *Scene) indexOf(id string) int {
	for i, o := range s.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) requireAll(ids []string) error {
	for _, id := range ids {
		if !s.ObjectExists(id) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
		}
	}
	return nil
}

// Add appends obj and records the addition.
func (s *Scene) Add(obj *shape.Object) error {
	if s.inProgress {
		return ErrTransformInProgress
	}
	if _, seen := s.ids[obj.ID]; seen {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	s.ids[obj.ID] = struct{}{}
	s.objects = append(s.objects, obj)
	s.push(Action{Type: ActionAdd, Objects: []Placed{{Object: obj, Index: len(s.objects) - 1}}})
	return nil
}

// Remove takes the named objects out of the scene and records them, with their
// positions, so undo can put them back.
func (s *Scene) Remove(ids ...string) error {
	if s.inProgress {
		return ErrTransformInProgress
	}
	if err := s.requireAll(ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var removed []Placed
	kept := s.objects[:0:0]
	for i, o := range s.objects {
		if drop[o.ID] {
			removed = append(removed, Placed{Object: o, Index: i})
			continue
		}
		kept = append(kept, o)
	}
	s.objects = kept
	s.deselect(ids...)
	s.push(Action{Type: ActionRemove, Objects: removed})
	return nil
}

// Clear drops every object, the selection and the history. Ids stay reserved.
func (s *Scene) Clear() {
	s.objects = nil
	s.selected = nil
	s.past = nil
	s.future = nil
	s.inProgress = false
}

// TranslateObjects moves each named object by delta.
func (s *Scene) TranslateObjects(ids []string, delta geom.Vec2) error {
	return s.editTransforms(ids, func(t *geom.Transform) { t.Translate(delta) })
}

// RotateObjects turns each named object about its own centre.
func (s *Scene) RotateObjects(ids []string, delta float64) error {
	return s.editTransforms(ids, func(t *geom.Transform) { t.Rotate(delta) })
}

// ResizeObject resizes id while the corner opposite dragged stays in place.
// A lens rejects heights its arcs cannot span with shape.ErrInvalidLens and
// keeps its previous transform.
func (s *Scene) ResizeObject(id string, dragged geom.Corner, newSize geom.Vec2) error {
	obj, err := s.Object(id)
	if err != nil {
		return err
	}
	return obj.Resize(dragged, newSize)
}

// SetTransform replaces the transform of id wholesale.
func (s *Scene) SetTransform(id string, t geom.Transform) error {
	return s.editTransforms([]string{id}, func(cur *geom.Transform) { *cur = t })
}

// editTransforms applies edit live. Recording the change is left to the
// StartTransform/EndTransform bracket around it.
func (s *Scene) editTransforms(ids []string, edit func(*geom.Transform)) error {
	if err := s.requireAll(ids); err != nil {
		return err
	}
	for _, id := range ids {
		obj := s.objects[s.indexOf(id)]
		edit(&obj.Transform)
	}
	return nil
}
