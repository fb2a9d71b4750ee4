package collab

import (
	"encoding/json"
	"log/slog"
	"maps"
)

// Room is everyone watching one scene, together with the last presence each
// of them reported. The hub's mutex guards it.
type Room struct {
	sceneID  string
	clients  map[string]*Client          // clientID -> client
	presence map[string]*PresencePayload // clientID -> last reported presence
}

func newRoom(sceneID string) *Room {
	return &Room{
		sceneID:  sceneID,
		clients:  make(map[string]*Client),
		presence: make(map[string]*PresencePayload),
	}
}

func (r *Room) join(c *Client) {
	r.clients[c.ClientID] = c
}

// leave drops c and its presence. It reports false if c was not a member.
func (r *Room) leave(c *Client) bool {
	if r.clients[c.ClientID] != c {
		return false
	}
	delete(r.clients, c.ClientID)
	delete(r.presence, c.ClientID)
	return true
}

func (r *Room) empty() bool {
	return len(r.clients) == 0
}

// setPresence records p for a current member. Reports from clients that have
// already left are ignored.
func (r *Room) setPresence(clientID string, p *PresencePayload) bool {
	if _, ok := r.clients[clientID]; !ok {
		return false
	}
	r.presence[clientID] = p
	return true
}

// presenceState snapshots the room for a client that just joined.
func (r *Room) presenceState() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: maps.Clone(r.presence)})
	if err != nil {
		slog.Error("marshal presence state", "scene", r.sceneID, "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}

func (r *Room) members(exceptClientID string) []*Client {
	out := make([]*Client, 0, len(r.clients))
	for id, c := range r.clients {
		if id != exceptClientID {
			out = append(out, c)
		}
	}
	return out
}
