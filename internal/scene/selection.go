package scene

import (
	"slices"

	"github.com/prismanis/prismanis/internal/shape"
)

// Selection returns the selected ids in the order they were selected.
func (s *Scene) Selection() []string {
	return slices.Clone(s.selected)
}

// SelectedObjects returns the selected objects in selection order.
func (s *Scene) SelectedObjects() []*shape.Object {
	out := make([]*shape.Object, 0, len(s.selected))
	for _, id := range s.selected {
		out = append(out, s.objects[s.indexOf(id)])
	}
	return out
}

// IsSelected reports whether id is selected.
func (s *Scene) IsSelected(id string) bool {
	return slices.Contains(s.selected, id)
}

// SelectOnly replaces the selection with ids.
func (s *Scene) SelectOnly(ids ...string) error {
	if err := s.requireAll(ids); err != nil {
		return err
	}
	s.selected = nil
	s.selectIDs(ids)
	return nil
}

// AddToSelection extends the selection with ids.
func (s *Scene) AddToSelection(ids ...string) error {
	if err := s.requireAll(ids); err != nil {
		return err
	}
	s.selectIDs(ids)
	return nil
}

// RemoveFromSelection drops ids from the selection.
func (s *Scene) RemoveFromSelection(ids ...string) error {
	if err := s.requireAll(ids); err != nil {
		return err
	}
	s.deselect(ids...)
	return nil
}

// Deselect empties the selection.
func (s *Scene) Deselect() {
	s.selected = nil
}

func (s *Scene) selectIDs(ids []string) {
	for _, id := range ids {
		if !slices.Contains(s.selected, id) {
			s.selected = append(s.selected, id)
		}
	}
}

func (s *Scene) deselect(ids ...string) {
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool {
		return slices.Contains(ids, id)
	})
}
