package scene

import (
	"fmt"
	"slices"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
)

// ActionType identifies what a history entry did.
type ActionType string

const (
	ActionAdd       ActionType = "object.add"
	ActionRemove    ActionType = "object.remove"
	ActionTransform ActionType = "object.transform"
)

// Placed is an object together with its position in the object list.
type Placed struct {
	Object *shape.Object
	Index  int
}

// TransformChange records one object's transform before and after an edit.
type TransformChange struct {
	ID  string
	Old geom.Transform
	New geom.Transform
}

// Action is one undoable step. Add and remove actions carry Objects;
// transform actions carry Changes.
type Action struct {
	Type    ActionType
	Objects []Placed
	Changes []TransformChange
}

func (s *Scene) push(a Action) {
	s.past = append(s.past, a)
	s.future = nil
}

// CanUndo reports whether Undo would do something.
func (s *Scene) CanUndo() bool { return len(s.past) > 0 && !s.inProgress }

// CanRedo reports whether Redo would do something.
func (s *Scene) CanRedo() bool { return len(s.future) > 0 && !s.inProgress }

// InProgress reports whether a transform is open between StartTransform and EndTransform.
func (s *Scene) InProgress() bool { return s.inProgress }

// History returns copies of the undo and redo stacks, oldest first.
func (s *Scene) History() (past, future []Action) {
	return slices.Clone(s.past), slices.Clone(s.future)
}

// StartTransform opens a transform action over ids, snapshotting each current
// transform as both old and new, and returns the action's index.
func (s *Scene) StartTransform(ids []string) (int, error) {
	if s.inProgress {
		return 0, ErrTransformInProgress
	}
	if err := s.requireAll(ids); err != nil {
		return 0, err
	}
	changes := make([]TransformChange, 0, len(ids))
	for _, id := range ids {
		t := s.objects[s.indexOf(id)].Transform
		changes = append(changes, TransformChange{ID: id, Old: t, New: t})
	}
	s.push(Action{Type: ActionTransform, Changes: changes})
	s.inProgress = true
	return len(s.past) - 1, nil
}

// EndTransform records the current transforms of the action at index as its
// new state and closes it.
func (s *Scene) EndTransform(index int) error {
	if !s.inProgress {
		return ErrNoTransformInProgress
	}
	if index < 0 || index >= len(s.past) || s.past[index].Type != ActionTransform {
		return fmt.Errorf("%w: %d", ErrBadActionIndex, index)
	}
	a := &s.past[index]
	for i, c := range a.Changes {
		if j := s.indexOf(c.ID); j >= 0 {
			a.Changes[i].New = s.objects[j].Transform
		}
	}
	s.inProgress = false
	return nil
}

// Undo reverts the most recent action.
func (s *Scene) Undo() error {
	if s.inProgress {
		return ErrTransformInProgress
	}
	if len(s.past) == 0 {
		return ErrNothingToUndo
	}
	a := s.past[len(s.past)-1]
	if err := s.revert(a); err != nil {
		return err
	}
	s.past = s.past[:len(s.past)-1]
	s.future = append(s.future, a)
	return nil
}

// Redo reapplies the most recently undone action.
func (s *Scene) Redo() error {
	if s.inProgress {
		return ErrTransformInProgress
	}
	if len(s.future) == 0 {
		return ErrNothingToRedo
	}
	a := s.future[len(s.future)-1]
	if err := s.apply(a); err != nil {
		return err
	}
	s.future = s.future[:len(s.future)-1]
	s.past = append(s.past, a)
	return nil
}

func (s *Scene) revert(a Action) error {
	switch a.Type {
	case ActionAdd:
		return s.takeOut(a.Objects)
	case ActionRemove:
		return s.putBack(a.Objects)
	case ActionTransform:
		return s.setTransforms(a.Changes, func(c TransformChange) geom.Transform { return c.Old })
	default:
		return fmt.Errorf("unknown action type: %s", a.Type)
	}
}

func (s *Scene) apply(a Action) error {
	switch a.Type {
	case ActionAdd:
		return s.putBack(a.Objects)
	case ActionRemove:
		return s.takeOut(a.Objects)
	case ActionTransform:
		return s.setTransforms(a.Changes, func(c TransformChange) geom.Transform { return c.New })
	default:
		return fmt.Errorf("unknown action type: %s", a.Type)
	}
}

func (s *Scene) takeOut(placed []Placed) error {
	ids := make([]string, len(placed))
	for i, p := range placed {
		ids[i] = p.Object.ID
	}
	if err := s.requireAll(ids); err != nil {
		return err
	}
	for _, id := range ids {
		i := s.indexOf(id)
		s.objects = slices.Delete(s.objects, i, i+1)
	}
	s.deselect(ids...)
	return nil
}

// putBack reinserts objects at their recorded positions. placed is in
// ascending index order, so earlier inserts never shift later targets.
func (s *Scene) putBack(placed []Placed) error {
	for _, p := range placed {
		if s.ObjectExists(p.Object.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.Object.ID)
		}
	}
	for _, p := range placed {
		i := min(p.Index, len(s.objects))
		s.objects = slices.Insert(s.objects, i, p.Object)
	}
	return nil
}

func (s *Scene) setTransforms(changes []TransformChange, pick func(TransformChange) geom.Transform) error {
	ids := make([]string, len(changes))
	for i, c := range changes {
		ids[i] = c.ID
	}
	if err := s.requireAll(ids); err != nil {
		return err
	}
	for _, c := range changes {
		s.objects[s.indexOf(c.ID)].Transform = pick(c)
	}
	return nil
}

// ClearHistory forgets every recorded action. It fails while a transform is open.
func (s *Scene) ClearHistory() error {
	if s.inProgress {
		return ErrTransformInProgress
	}
	s.past = nil
	s.future = nil
	return nil
}
