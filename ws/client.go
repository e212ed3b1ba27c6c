package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
)

const (
	writeWait = 10 * time.Second

	// Clients send a heartbeat every 30s; three missed beats close the
	// connection.
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is one websocket connection.
//
// ReadPump and WritePump run in separate goroutines; gorilla/websocket
// allows one concurrent reader and one concurrent writer, and mu guards the
// writer side.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	role     Role
	identity string // member handle for observers, remote address for relays
	send     chan []byte
	mu       sync.Mutex
	logger   *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, role Role, identity string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		role:     role,
		identity: identity,
		send:     make(chan []byte, sendBufferSize),
		logger:   hub.logger.With(zap.String("role", string(role)), zap.String("identity", identity)),
	}
}

// ReadPump reads until the connection fails or the read deadline passes.
// Relay transitions are handled inline, one at a time.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn("failed to set read deadline", zap.Error(err))
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", zap.Error(err))
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.logger.Debug("invalid message", zap.Error(err))
			continue
		}

		c.handleEvent(event)
	}
}

// inboundEvent defers decoding of d until the op is known.
type inboundEvent struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"d"`
}

var errNoHandler = errors.New("no handler registered")

func (c *Client) handleEvent(event inboundEvent) {
	if event.Op == OpHeartbeat {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Warn("failed to set read deadline", zap.Error(err))
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})
		return
	}

	if c.role != RoleRelay {
		c.logger.Debug("ignored op from observer", zap.String("op", event.Op))
		return
	}

	var err error
	switch event.Op {
	case OpVoiceStateUpdate:
		var data models.VoiceStateChange
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = dispatch(c.hub.onVoiceState, data)
		}
	case OpActivityUpdate:
		var data models.ActivityChange
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = dispatch(c.hub.onActivity, data)
		}
	case OpBoundaryEvent:
		var data models.BoundaryEvent
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = dispatch(c.hub.onBoundaryEvent, data)
		}
	default:
		c.logger.Debug("unknown op", zap.String("op", event.Op))
		return
	}

	if err != nil {
		c.logger.Warn("relay event rejected", zap.String("op", event.Op), zap.Error(err))
		c.sendEvent(Event{Op: OpError, Data: ErrorData{Op: event.Op, Message: err.Error()}})
	}
}

func dispatch[T any](fn func(T) error, data T) error {
	if fn == nil {
		return errNoHandler
	}
	return fn(data)
}

// sendEvent queues an event for this client only. The hub lock guarantees
// the send channel is still open.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping connection")
		go c.hub.drop(c)
	}
}

// WritePump drains send until the hub closes it.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
