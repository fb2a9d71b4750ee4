package collab

import (
	"errors"
	"fmt"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/workspace"
)

var ErrInvalidOperation = errors.New("invalid operation")

const (
	OpAddPolygon    = "polygon.add"
	OpAddLens       = "lens.add"
	OpRemoveObjects = "object.remove"
	OpTransform     = "object.transform"
	OpUndo          = "history.undo"
	OpRedo          = "history.redo"
	OpSetSelection  = "selection.set"
	OpAddLight      = "light.add"
	OpMoveLight     = "light.move"
	OpRemoveLight   = "light.remove"
	OpSetMode       = "mode.set"
)

// Operation is a scene edit submitted over the socket. Only the field
// matching Type is read.
type Operation struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Polygon   *document.PolygonInput   `json:"polygon,omitempty"`
	Lens      *document.LensInput      `json:"lens,omitempty"`
	Transform *document.TransformInput `json:"transform,omitempty"`
	Light     *document.LightInput     `json:"light,omitempty"`
	Move      *document.MoveLightInput `json:"move,omitempty"`

	// Object ids for object.remove and selection.set.
	IDs     []string `json:"ids,omitempty"`
	LightID string   `json:"lightId,omitempty"`
	Mode    string   `json:"mode,omitempty"`
}

// applyOperation runs op against the scene. It returns the id of anything
// the operation created.
func applyOperation(scenes *workspace.Service, sceneID string, op Operation) (string, error) {
	switch op.Type {
	case OpAddPolygon:
		if op.Polygon == nil {
			return "", missing(op, "polygon")
		}
		return scenes.AddPolygon(sceneID, *op.Polygon)
	case OpAddLens:
		if op.Lens == nil {
			return "", missing(op, "lens")
		}
		return scenes.AddLens(sceneID, *op.Lens)
	case OpRemoveObjects:
		if len(op.IDs) == 0 {
			return "", missing(op, "ids")
		}
		return "", scenes.RemoveObjects(sceneID, op.IDs...)
	case OpTransform:
		if op.Transform == nil || len(op.Transform.IDs) == 0 {
			return "", missing(op, "transform")
		}
		return "", scenes.Transform(sceneID, *op.Transform)
	case OpUndo:
		return "", scenes.Undo(sceneID)
	case OpRedo:
		return "", scenes.Redo(sceneID)
	case OpSetSelection:
		return "", scenes.SetSelection(sceneID, op.IDs)
	case OpAddLight:
		if op.Light == nil {
			return "", missing(op, "light")
		}
		l, err := scenes.AddLight(sceneID, *op.Light)
		return l.ID, err
	case OpMoveLight:
		if op.Move == nil || op.LightID == "" {
			return "", missing(op, "lightId and move")
		}
		return "", scenes.MoveLight(sceneID, op.LightID, op.Move.Position, op.Move.Angle)
	case OpRemoveLight:
		if op.LightID == "" {
			return "", missing(op, "lightId")
		}
		return "", scenes.RemoveLight(sceneID, op.LightID)
	case OpSetMode:
		mode := trace.ParseMode(op.Mode)
		if mode.String() != op.Mode {
			return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidOperation, op.Mode)
		}
		return "", scenes.SetMode(sceneID, mode)
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
}

func missing(op Operation, field string) error {
	return fmt.Errorf("%w: %s needs %s", ErrInvalidOperation, op.Type, field)
}
