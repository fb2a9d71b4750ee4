package workspace

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/prismanis/prismanis/internal/auth"
	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/engine"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/scene"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the scene routes on an authenticated router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/scenes", h.List).Methods("GET")
	r.HandleFunc("/scenes", h.Create).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}", h.Get).Methods("GET")
	r.HandleFunc("/scenes/{sceneId}", h.Delete).Methods("DELETE")

	r.HandleFunc("/scenes/{sceneId}/polygons", h.AddPolygon).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/lenses", h.AddLens).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/objects/{objectId}", h.RemoveObject).Methods("DELETE")
	r.HandleFunc("/scenes/{sceneId}/objects/{objectId}/resize", h.Resize).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/transform", h.Transform).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/undo", h.Undo).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/redo", h.Redo).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/selection", h.SetSelection).Methods("PUT")
	r.HandleFunc("/scenes/{sceneId}/mode", h.SetMode).Methods("PUT")

	r.HandleFunc("/scenes/{sceneId}/lights", h.AddLight).Methods("POST")
	r.HandleFunc("/scenes/{sceneId}/lights/{lightId}", h.MoveLight).Methods("PUT")
	r.HandleFunc("/scenes/{sceneId}/lights/{lightId}", h.RemoveLight).Methods("DELETE")

	r.HandleFunc("/scenes/{sceneId}/trace", h.Trace).Methods("GET")
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	subject := auth.SubjectFromContext(r.Context())

	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	detail, err := h.service.Create(subject, req.Name, req.Sample)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(auth.SubjectFromContext(r.Context())))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(mux.Vars(r)["sceneId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	subject := auth.SubjectFromContext(r.Context())
	if err := h.service.Delete(mux.Vars(r)["sceneId"], subject); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddPolygon(w http.ResponseWriter, r *http.Request) {
	var in document.PolygonInput
	if !decode(w, r, &in) {
		return
	}
	id, err := h.service.AddPolygon(mux.Vars(r)["sceneId"], in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) AddLens(w http.ResponseWriter, r *http.Request) {
	var in document.LensInput
	if !decode(w, r, &in) {
		return
	}
	id, err := h.service.AddLens(mux.Vars(r)["sceneId"], in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) RemoveObject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveObjects(vars["sceneId"], vars["objectId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var in document.ResizeInput
	if !decode(w, r, &in) {
		return
	}
	corner, ok := geom.ParseCorner(in.Corner)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown corner"})
		return
	}
	if err := h.service.Resize(vars["sceneId"], vars["objectId"], corner, in.Width, in.Height); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	var in document.TransformInput
	if !decode(w, r, &in) {
		return
	}
	if len(in.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}
	if err := h.service.Transform(mux.Vars(r)["sceneId"], in); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Undo(mux.Vars(r)["sceneId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Redo(mux.Vars(r)["sceneId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var in document.SelectionInput
	if !decode(w, r, &in) {
		return
	}
	if err := h.service.SetSelection(mux.Vars(r)["sceneId"], in.IDs); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var in document.ModeInput
	if !decode(w, r, &in) {
		return
	}
	mode := trace.ParseMode(in.Mode)
	if mode.String() != in.Mode {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode"})
		return
	}
	if err := h.service.SetMode(mux.Vars(r)["sceneId"], mode); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddLight(w http.ResponseWriter, r *http.Request) {
	var in document.LightInput
	if !decode(w, r, &in) {
		return
	}
	light, err := h.service.AddLight(mux.Vars(r)["sceneId"], in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, light)
}

func (h *Handler) MoveLight(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var in document.MoveLightInput
	if !decode(w, r, &in) {
		return
	}
	if err := h.service.MoveLight(vars["sceneId"], vars["lightId"], in.Position, in.Angle); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveLight(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveLight(vars["sceneId"], vars["lightId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	result, version, err := h.service.Trace(mux.Vars(r)["sceneId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": version, "trace": result})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, scene.ErrObjectNotFound), errors.Is(err, engine.ErrLightNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, shape.ErrInvalidLens),
		errors.Is(err, shape.ErrTooFewPoints),
		errors.Is(err, material.ErrUnknownMaterial),
		errors.Is(err, trace.ErrUnknownPreset):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, scene.ErrNothingToUndo),
		errors.Is(err, scene.ErrNothingToRedo),
		errors.Is(err, scene.ErrTransformInProgress),
		errors.Is(err, scene.ErrNoTransformInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
