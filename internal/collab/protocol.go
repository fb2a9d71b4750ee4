package collab

import (
	"encoding/json"

	"github.com/prismanis/prismanis/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	SceneID  string          `json:"sceneId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"

	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"

	// Sent to the whole room after every committed change.
	TypeTraceResult = "trace.result"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Subject  string `json:"subject"`
	Version  int    `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PresencePayload is what one client shows the others: where its pointer
// is and what it has selected.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PresenceStatePayload is keyed by client id.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

type OperationAckPayload struct {
	OperationID string `json:"operationId"`
	// CreatedID is set for operations that add an object or a light.
	CreatedID string `json:"createdId,omitempty"`
}

type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// TraceResultPayload carries the scene version the trace belongs to.
// Clients drop results older than the last one they applied.
type TraceResultPayload struct {
	Version int                  `json:"version"`
	Trace   document.TraceResult `json:"trace"`
}

func newMessage(msgType string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: msgType, Payload: data}
}
