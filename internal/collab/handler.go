package collab

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TokenValidator resolves a session token to its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type Handler struct {
	hub            *Hub
	tokens         TokenValidator
	originPatterns []string
}

func NewHandler(hub *Hub, tokens TokenValidator, originPatterns []string) *Handler {
	return &Handler{hub: hub, tokens: tokens, originPatterns: originPatterns}
}

// ServeWS upgrades /ws/scenes/{sceneId}?token=… to a room connection.
// Browsers cannot set headers on websocket requests, so the token travels
// in the query string.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if !h.hub.scenes.Exists(sceneID) {
		http.Error(w, "scene not found", http.StatusNotFound)
		return
	}

	displayName := r.URL.Query().Get("name")
	if displayName == "" {
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, subject, displayName, sceneID, uuid.New().String())
	h.hub.Register(client)

	client.Serve(r.Context())
}
