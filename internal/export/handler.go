package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Source looks up the current frame of a scene.
type Source interface {
	Frame(sceneID string) (Frame, bool)
}

type Handler struct {
	source  Source
	maxSize int
}

func NewHandler(source Source, maxSize int) *Handler {
	return &Handler{source: source, maxSize: maxSize}
}

// TracePNG serves the traced scene as an image. Query parameters width,
// height and scale override the defaults.
func (h *Handler) TracePNG(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	opts, err := h.parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	frame, ok := h.source.Frame(sceneID)
	if !ok {
		http.Error(w, "scene not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, frame, opts); err != nil {
		slog.Error("render trace", "error", err, "scene", sceneID)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.png"`, sceneID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (h *Handler) parseOptions(r *http.Request) (Options, error) {
	opts := DefaultOptions()
	q := r.URL.Query()

	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > h.maxSize {
			return Options{}, fmt.Errorf("%w: %s must be between 1 and %d", ErrBadSize, p.key, h.maxSize)
		}
		*p.dst = n
	}
	if opts.Width > h.maxSize || opts.Height > h.maxSize {
		return Options{}, fmt.Errorf("%w: default size exceeds %d", ErrBadSize, h.maxSize)
	}

	if v := q.Get("scale"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || s <= 0 || s > 16 {
			return Options{}, errors.New("scale must be in (0, 16]")
		}
		opts.Scale = s
	}
	return opts, nil
}
