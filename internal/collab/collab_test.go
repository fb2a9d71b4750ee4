package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gorilla/mux"

	"github.com/prismanis/prismanis/internal/auth"
	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/trace"
	"github.com/prismanis/prismanis/internal/workspace"
)

type fixture struct {
	scenes  *workspace.Service
	sceneID string
	token   string
	server  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scenes := workspace.NewService(trace.DefaultLimits(), trace.ModeFresnel)
	d, err := scenes.Create("alice", "room", true)
	if err != nil {
		t.Fatal(err)
	}

	hub := NewHub(scenes)
	go hub.Run()
	t.Cleanup(hub.Stop)

	tokens := auth.NewService("test-secret")
	session, err := tokens.StartSession()
	if err != nil {
		t.Fatal(err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws/scenes/{sceneId}", NewHandler(hub, tokens, nil).ServeWS)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &fixture{scenes: scenes, sceneID: d.ID, token: session.Token, server: server}
}

func (f *fixture) url(sceneID, token string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/scenes/" + sceneID + "?token=" + token
}

func (f *fixture) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, f.url(f.sceneID, f.token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil skips messages until one of the given type arrives.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) Message {
	t.Helper()
	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func decodePayload[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		t.Fatalf("decode %s: %v", msg.Type, err)
	}
	return v
}

func submit(t *testing.T, ctx context.Context, conn *websocket.Conn, op Operation) {
	t.Helper()
	payload, _ := json.Marshal(OperationSubmitPayload{Operation: op})
	if err := wsjson.Write(ctx, conn, Message{Type: TypeOpSubmit, Payload: payload}); err != nil {
		t.Fatal(err)
	}
}

func TestRejectsBadConnections(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"missing token", f.url(f.sceneID, ""), http.StatusUnauthorized},
		{"bad token", f.url(f.sceneID, "nope"), http.StatusUnauthorized},
		{"unknown scene", f.url("scene_missing", f.token), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.Dial(ctx, tt.url, nil)
			if err == nil {
				t.Fatal("dial succeeded")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Fatalf("resp = %v, want status %d", resp, tt.status)
			}
		})
	}
}

func TestOperationsBroadcastTraces(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := f.dial(t, ctx)
	welcome := decodePayload[WelcomePayload](t, readUntil(t, ctx, conn, TypeWelcome))
	if welcome.Version != 1 || welcome.ClientID == "" {
		t.Fatalf("welcome = %+v", welcome)
	}
	initial := decodePayload[TraceResultPayload](t, readUntil(t, ctx, conn, TypeTraceResult))
	if initial.Version != 1 || len(initial.Trace.Segments) == 0 {
		t.Fatalf("initial trace = %+v", initial)
	}

	submit(t, ctx, conn, Operation{
		ID:   "op-1",
		Type: OpAddPolygon,
		Polygon: &document.PolygonInput{Points: []document.Point{
			{X: 2000, Y: 2000}, {X: 2100, Y: 2000}, {X: 2050, Y: 2080},
		}},
	})
	next := decodePayload[TraceResultPayload](t, readUntil(t, ctx, conn, TypeTraceResult))
	if next.Version != 2 {
		t.Errorf("trace version = %d, want 2", next.Version)
	}
	ack := decodePayload[OperationAckPayload](t, readUntil(t, ctx, conn, TypeOpAck))
	if ack.OperationID != "op-1" || !strings.HasPrefix(ack.CreatedID, "obj_") {
		t.Errorf("ack = %+v", ack)
	}

	submit(t, ctx, conn, Operation{ID: "op-2", Type: "object.explode"})
	nack := decodePayload[OperationNackPayload](t, readUntil(t, ctx, conn, TypeOpNack))
	if nack.OperationID != "op-2" || nack.Reason == "" {
		t.Errorf("nack = %+v", nack)
	}

	// Edits made outside the socket reach the room too.
	if err := f.scenes.Undo(f.sceneID); err != nil {
		t.Fatal(err)
	}
	after := decodePayload[TraceResultPayload](t, readUntil(t, ctx, conn, TypeTraceResult))
	if after.Version != 3 {
		t.Errorf("trace version after undo = %d, want 3", after.Version)
	}
}

func TestPresence(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := f.dial(t, ctx)
	readUntil(t, ctx, first, TypePresenceState)

	second := f.dial(t, ctx)
	welcome := decodePayload[WelcomePayload](t, readUntil(t, ctx, second, TypeWelcome))

	join := decodePayload[PresenceJoinPayload](t, readUntil(t, ctx, first, TypePresenceJoin))
	if join.ClientID != welcome.ClientID || join.DisplayName != "Anonymous" {
		t.Errorf("join = %+v", join)
	}

	payload, _ := json.Marshal(PresencePayload{Cursor: &CursorPos{X: 3, Y: 4}})
	if err := wsjson.Write(ctx, second, Message{Type: TypePresenceUpdate, Payload: payload}); err != nil {
		t.Fatal(err)
	}
	msg := readUntil(t, ctx, first, TypePresenceUpdate)
	update := decodePayload[PresencePayload](t, msg)
	if msg.ClientID != welcome.ClientID || update.Cursor == nil || update.Cursor.X != 3 {
		t.Errorf("update = %+v from %s", update, msg.ClientID)
	}

	second.Close(websocket.StatusNormalClosure, "")
	leave := decodePayload[PresenceLeavePayload](t, readUntil(t, ctx, first, TypePresenceLeave))
	if leave.ClientID != welcome.ClientID {
		t.Errorf("leave = %+v", leave)
	}
}

func TestApplyOperationValidates(t *testing.T) {
	scenes := workspace.NewService(trace.DefaultLimits(), trace.ModeFresnel)
	d, _ := scenes.Create("alice", "ops", false)

	for _, op := range []Operation{
		{Type: OpAddPolygon},
		{Type: OpAddLens},
		{Type: OpRemoveObjects},
		{Type: OpTransform},
		{Type: OpAddLight},
		{Type: OpMoveLight},
		{Type: OpRemoveLight},
		{Type: OpSetMode, Mode: "quantum"},
		{Type: "nope"},
	} {
		if _, err := applyOperation(scenes, d.ID, op); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("%s: err = %v, want ErrInvalidOperation", op.Type, err)
		}
	}

	if _, err := applyOperation(scenes, d.ID, Operation{Type: OpSetMode, Mode: "critical"}); err != nil {
		t.Errorf("mode.set: %v", err)
	}
	id, err := applyOperation(scenes, d.ID, Operation{Type: OpAddLight, Light: &document.LightInput{Preset: trace.PresetLamp}})
	if err != nil || !strings.HasPrefix(id, "light_") {
		t.Errorf("light.add = %q, %v", id, err)
	}
}

func outboxTypes(t *testing.T, batch []outgoing) []string {
	t.Helper()
	types := make([]string, len(batch))
	for i, out := range batch {
		var msg Message
		if err := json.Unmarshal(out.data, &msg); err != nil {
			t.Fatal(err)
		}
		types[i] = msg.Type
	}
	return types
}

func TestClientOutboxKeepsNewestTrace(t *testing.T) {
	c := NewClient(nil, nil, "alice", "Alice", "scene_x", "c1")
	c.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: "c1", Version: 1}))
	c.SendTrace(1, document.TraceResult{})
	c.Send(newMessage(TypeOpAck, OperationAckPayload{OperationID: "op-1"}))
	c.SendTrace(3, document.TraceResult{})
	// A stale trace arriving late must not replace the newer one.
	c.SendTrace(2, document.TraceResult{})

	batch := c.takeOutbox()
	got := outboxTypes(t, batch)
	want := []string{TypeWelcome, TypeOpAck, TypeTraceResult}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("outbox = %v, want %v", got, want)
	}
	var last Message
	if err := json.Unmarshal(batch[2].data, &last); err != nil {
		t.Fatal(err)
	}
	if v := decodePayload[TraceResultPayload](t, last).Version; v != 3 {
		t.Errorf("queued trace version = %d, want 3", v)
	}

	c.shutdown()
	c.shutdown()
	c.Send(newMessage(TypeOpAck, OperationAckPayload{OperationID: "op-2"}))
	if n := len(c.takeOutbox()); n != 0 {
		t.Errorf("outbox after shutdown has %d messages", n)
	}
}

func TestClientOutboxBound(t *testing.T) {
	c := NewClient(nil, nil, "alice", "Alice", "scene_x", "c1")
	for i := 0; i < maxQueued+10; i++ {
		c.Send(newMessage(TypeOpAck, OperationAckPayload{OperationID: "op"}))
	}
	c.SendTrace(9, document.TraceResult{})

	got := outboxTypes(t, c.takeOutbox())
	if len(got) != maxQueued+1 {
		t.Fatalf("outbox holds %d messages, want %d", len(got), maxQueued+1)
	}
	if got[len(got)-1] != TypeTraceResult {
		t.Errorf("last queued = %s, want the trace", got[len(got)-1])
	}
}
