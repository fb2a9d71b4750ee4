// Package collab streams live scene traces to websocket clients and accepts
// scene edits from them. Every client watching a scene shares a room.
package collab

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/workspace"
)

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sceneID -> room
	scenes     *workspace.Service
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub over scenes and subscribes it to their changes.
func NewHub(scenes *workspace.Service) *Hub {
	h := &Hub{
		rooms:      make(map[string]*Room),
		scenes:     scenes,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	scenes.OnChange(h.SceneChanged)
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop closes every client connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.shutdown()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SceneChanged broadcasts a fresh trace to everyone watching the scene.
func (h *Hub) SceneChanged(sceneID string, version int, result document.TraceResult) {
	h.mu.RLock()
	var clients []*Client
	if room, ok := h.rooms[sceneID]; ok {
		clients = room.members("")
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.SendTrace(version, result)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SceneID]
	if !ok {
		room = newRoom(client.SceneID)
		h.rooms[client.SceneID] = room
	}
	stateMsg := room.presenceState()
	room.join(client)
	h.mu.Unlock()

	result, version, err := h.scenes.Trace(client.SceneID)
	if err != nil {
		client.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
	}
	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		Subject:  client.Subject,
		Version:  version,
	}))
	if err == nil {
		client.SendTrace(version, result)
	}

	if stateMsg != nil {
		client.Send(stateMsg)
	}

	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	joinMsg.Subject = client.Subject
	h.broadcastToRoom(client.SceneID, joinMsg, client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "scene", client.SceneID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SceneID]
	if !ok || !room.leave(client) {
		h.mu.Unlock()
		return
	}
	client.shutdown()
	if room.empty() {
		delete(h.rooms, client.SceneID)
	}
	h.mu.Unlock()

	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID})
	leaveMsg.Subject = client.Subject
	h.broadcastToRoom(client.SceneID, leaveMsg, "")

	slog.Info("client left", "client", client.ClientID, "scene", client.SceneID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.shutdown()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOperation(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}
	presence.DisplayName = sender.DisplayName

	h.mu.Lock()
	room, ok := h.rooms[sender.SceneID]
	ok = ok && room.setPresence(sender.ClientID, &presence)
	h.mu.Unlock()
	if !ok {
		return
	}

	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.ClientID = sender.ClientID
	outMsg.Subject = sender.Subject
	h.broadcastToRoom(sender.SceneID, outMsg, sender.ClientID)
}

// handleOperation applies a submitted edit. The trace broadcast that follows
// a successful edit reaches the sender through SceneChanged before the ack.
func (h *Hub) handleOperation(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid operation payload"}))
		return
	}
	op := submit.Operation

	createdID, err := applyOperation(h.scenes, sender.SceneID, op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "error", err, "client", sender.ClientID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{OperationID: op.ID, Reason: err.Error()}))
		return
	}
	sender.Send(newMessage(TypeOpAck, OperationAckPayload{OperationID: op.ID, CreatedID: createdID}))
}

func (h *Hub) broadcastToRoom(sceneID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sceneID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := room.members(excludeClientID)
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
