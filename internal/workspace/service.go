// Package workspace hosts live scenes for HTTP and websocket sessions.
// Each scene has its own lock; the engine inside is never touched without it.
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/engine"
	"github.com/prismanis/prismanis/internal/export"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/typeid"
)

var (
	ErrNotFound  = errors.New("scene not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalidID = errors.New("invalid id")
)

// ChangeFunc observes a committed mutation. It runs after the scene lock is
// released and must not block.
type ChangeFunc func(sceneID string, version int, result document.TraceResult)

type Service struct {
	mu        sync.RWMutex
	scenes    map[string]*workspace
	observers []ChangeFunc

	limits trace.Limits
	mode   trace.Mode
	now    func() time.Time
}

func NewService(limits trace.Limits, mode trace.Mode) *Service {
	return &Service{
		scenes: make(map[string]*workspace),
		limits: limits,
		mode:   mode,
		now:    time.Now,
	}
}

type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Detail is a scene's metadata together with its current contents.
type Detail struct {
	Info
	Snapshot document.Snapshot `json:"snapshot"`
}

type workspace struct {
	mu        sync.Mutex
	id        string
	name      string
	ownerID   string
	version   int
	createdAt time.Time
	updatedAt time.Time
	engine    *engine.Engine
}

func (w *workspace) info() Info {
	return Info{
		ID:        w.id,
		Name:      w.name,
		OwnerID:   w.ownerID,
		Version:   w.version,
		CreatedAt: w.createdAt.UTC().Format(time.RFC3339),
		UpdatedAt: w.updatedAt.UTC().Format(time.RFC3339),
	}
}

// OnChange registers an observer for every successful mutation.
func (s *Service) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Service) Create(ownerID, name string, sample bool) (*Detail, error) {
	e := engine.NewEngine(s.limits, s.mode)
	if sample {
		if err := e.LoadSample(); err != nil {
			return nil, fmt.Errorf("load sample: %w", err)
		}
	}
	now := s.now()
	w := &workspace{
		id:        typeid.NewSceneID(),
		name:      name,
		ownerID:   ownerID,
		version:   1,
		createdAt: now,
		updatedAt: now,
		engine:    e,
	}

	s.mu.Lock()
	s.scenes[w.id] = w
	s.mu.Unlock()

	return &Detail{Info: w.info(), Snapshot: e.Snapshot()}, nil
}

// List returns the scenes owned by ownerID, oldest first.
func (s *Service) List(ownerID string) []Info {
	s.mu.RLock()
	owned := make([]*workspace, 0, len(s.scenes))
	for _, w := range s.scenes {
		if w.ownerID == ownerID {
			owned = append(owned, w)
		}
	}
	s.mu.RUnlock()

	infos := make([]Info, 0, len(owned))
	for _, w := range owned {
		w.mu.Lock()
		infos = append(infos, w.info())
		w.mu.Unlock()
	}
	slices.SortFunc(infos, func(a, b Info) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt < b.CreatedAt {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return infos
}

func (s *Service) Get(sceneID string) (*Detail, error) {
	var d *Detail
	err := s.view(sceneID, func(w *workspace) error {
		d = &Detail{Info: w.info(), Snapshot: w.engine.Snapshot()}
		return nil
	})
	return d, err
}

// Delete removes a scene. Only its owner may delete it.
func (s *Service) Delete(sceneID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.scenes[sceneID]
	if !ok {
		return ErrNotFound
	}
	if w.ownerID != userID {
		return ErrForbidden
	}
	delete(s.scenes, sceneID)
	return nil
}

// Exists reports whether the scene is live.
func (s *Service) Exists(sceneID string) bool {
	_, err := s.lookup(sceneID)
	return err == nil
}

func (s *Service) lookup(sceneID string) (*workspace, error) {
	if err := typeid.Validate(sceneID, typeid.PrefixScene); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	s.mu.RLock()
	w, ok := s.scenes[sceneID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *Service) view(sceneID string, fn func(w *workspace) error) error {
	w, err := s.lookup(sceneID)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w)
}

// mutate runs fn under the scene lock. On success the version is bumped and
// observers receive the fresh trace.
func (s *Service) mutate(sceneID string, fn func(e *engine.Engine) error) error {
	w, err := s.lookup(sceneID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if err := fn(w.engine); err != nil {
		w.mu.Unlock()
		return err
	}
	w.version++
	w.updatedAt = s.now()
	version := w.version
	result := w.engine.TraceResult()
	w.mu.Unlock()

	s.mu.RLock()
	observers := slices.Clone(s.observers)
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(sceneID, version, result)
	}
	return nil
}

// --- Scene operations ---

func (s *Service) AddPolygon(sceneID string, in document.PolygonInput) (string, error) {
	var id string
	err := s.mutate(sceneID, func(e *engine.Engine) (err error) {
		id, err = e.AddPolygon(in)
		return err
	})
	return id, err
}

func (s *Service) AddLens(sceneID string, in document.LensInput) (string, error) {
	var id string
	err := s.mutate(sceneID, func(e *engine.Engine) (err error) {
		id, err = e.AddLens(in)
		return err
	})
	return id, err
}

func (s *Service) RemoveObjects(sceneID string, ids ...string) error {
	return s.mutate(sceneID, func(e *engine.Engine) error {
		return e.RemoveObjects(ids...)
	})
}

func (s *Service) Transform(sceneID string, in document.TransformInput) error {
	return s.mutate(sceneID, func(e *engine.Engine) error {
		return e.ApplyTransform(in)
	})
}

func (s *Service) Resize(sceneID, objectID string, corner geom.Corner, width, height float64) error {
	return s.mutate(sceneID, func(e *engine.Engine) error {
		idx, err := e.StartTransform([]string{objectID})
		if err != nil {
			return err
		}
		resizeErr := e.Resize(objectID, corner, width, height)
		if err := e.EndTransform(idx); err != nil {
			return err
		}
		return resizeErr
	})
}

func (s *Service) Undo(sceneID string) error {
	return s.mutate(sceneID, func(e *engine.Engine) error { return e.Undo() })
}

func (s *Service) Redo(sceneID string) error {
	return s.mutate(sceneID, func(e *engine.Engine) error { return e.Redo() })
}

func (s *Service) SetSelection(sceneID string, ids []string) error {
	return s.mutate(sceneID, func(e *engine.Engine) error { return e.SetSelection(ids) })
}

func (s *Service) SetMode(sceneID string, mode trace.Mode) error {
	return s.mutate(sceneID, func(e *engine.Engine) error {
		e.SetMode(mode)
		return nil
	})
}

func (s *Service) AddLight(sceneID string, in document.LightInput) (document.Light, error) {
	var l document.Light
	err := s.mutate(sceneID, func(e *engine.Engine) (err error) {
		l, err = e.AddLight(in)
		return err
	})
	return l, err
}

func (s *Service) MoveLight(sceneID, lightID string, position document.Point, angle float64) error {
	return s.mutate(sceneID, func(e *engine.Engine) error {
		return e.MoveLight(lightID, position, angle)
	})
}

func (s *Service) RemoveLight(sceneID, lightID string) error {
	return s.mutate(sceneID, func(e *engine.Engine) error { return e.RemoveLight(lightID) })
}

// --- Queries ---

func (s *Service) Trace(sceneID string) (document.TraceResult, int, error) {
	var (
		result  document.TraceResult
		version int
	)
	err := s.view(sceneID, func(w *workspace) error {
		result = w.engine.TraceResult()
		version = w.version
		return nil
	})
	return result, version, err
}

// Frame copies the current objects and trace so they can be rendered
// without holding the scene lock.
func (s *Service) Frame(sceneID string) (export.Frame, bool) {
	var f export.Frame
	err := s.view(sceneID, func(w *workspace) error {
		objects := w.engine.Scene().Objects()
		f.Objects = make([]*shape.Object, len(objects))
		for i, o := range objects {
			f.Objects[i] = o.Clone()
		}
		f.Segments = w.engine.Trace()
		return nil
	})
	return f, err == nil
}
