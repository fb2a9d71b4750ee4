package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/prismanis/prismanis/internal/document"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024

	// maxQueued bounds the non-trace backlog of a slow client.
	maxQueued = 256
)

// Client is one websocket connection watching a scene.
//
// Outgoing messages wait in an ordered outbox. A trace result supersedes any
// earlier trace result the client has not been sent yet, so a slow client
// skips intermediate traces instead of falling further behind.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	outbox []outgoing
	closed bool
	wake   chan struct{}
	done   chan struct{}

	Subject     string
	DisplayName string
	SceneID     string
	ClientID    string
}

type outgoing struct {
	trace   bool
	version int
	data    []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, subject, displayName, sceneID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		Subject:     subject,
		DisplayName: displayName,
		SceneID:     sceneID,
		ClientID:    clientID,
	}
}

// Serve runs the connection until the peer hangs up or ctx ends.
func (c *Client) Serve(ctx context.Context) {
	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("scene socket read", "error", err, "client", c.ClientID)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Send(newMessage(TypeError, ErrorPayload{Message: "malformed message"}))
			continue
		}
		// The connection decides who is speaking and about which scene.
		msg.Subject, msg.ClientID, msg.SceneID = c.Subject, c.ClientID, c.SceneID
		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-c.wake:
			for _, out := range c.takeOutbox() {
				if err := c.write(ctx, out.data); err != nil {
					slog.Debug("scene socket write", "error", err, "client", c.ClientID)
					return
				}
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// Send queues msg behind everything already queued for c.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "type", msg.Type, "error", err)
		return
	}
	c.enqueue(outgoing{data: data})
}

// SendTrace queues the trace of the given scene version. It replaces an
// older unsent trace and is dropped if a newer one is already queued.
func (c *Client) SendTrace(version int, result document.TraceResult) {
	data, err := json.Marshal(newMessage(TypeTraceResult, TraceResultPayload{Version: version, Trace: result}))
	if err != nil {
		slog.Error("marshal trace", "version", version, "error", err)
		return
	}
	c.enqueue(outgoing{trace: true, version: version, data: data})
}

func (c *Client) enqueue(out outgoing) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if out.trace {
		for _, queued := range c.outbox {
			if queued.trace && queued.version > out.version {
				c.mu.Unlock()
				return
			}
		}
		c.outbox = slices.DeleteFunc(c.outbox, func(o outgoing) bool { return o.trace })
	} else if len(c.outbox) >= maxQueued {
		c.mu.Unlock()
		slog.Warn("client outbox full, dropping message", "client", c.ClientID)
		return
	}
	c.outbox = append(c.outbox, out)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Client) takeOutbox() []outgoing {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.outbox
	c.outbox = nil
	return batch
}

// shutdown stops the write loop and discards the outbox. Later sends are no-ops.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.outbox = nil
	close(c.done)
}
