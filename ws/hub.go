package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
)

// EventPublisher is what services need from the hub. Depending on this
// instead of *Hub keeps the services testable with a fake.
type EventPublisher interface {
	BroadcastToAll(event Event)
}

// Role separates the two kinds of connection.
type Role string

const (
	RoleRelay    Role = "relay"
	RoleObserver Role = "observer"
)

// Hub tracks connected clients and fans broadcasts out to observers.
//
// Relay transitions do not pass through the hub's goroutine: a relay
// client calls the registered callbacks directly from its read loop, so
// events from one relay are reconciled strictly in the order sent.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	unregister chan *Client
	done       chan struct{}

	seq atomic.Int64

	onVoiceState    func(models.VoiceStateChange) error
	onActivity      func(models.ActivityChange) error
	onBoundaryEvent func(models.BoundaryEvent) error

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// OnVoiceStateUpdate sets the handler for relay voice transitions.
// Callbacks must be set before Run.
func (h *Hub) OnVoiceStateUpdate(fn func(models.VoiceStateChange) error) {
	h.onVoiceState = fn
}

func (h *Hub) OnActivityUpdate(fn func(models.ActivityChange) error) {
	h.onActivity = fn
}

func (h *Hub) OnBoundaryEvent(fn func(models.BoundaryEvent) error) {
	h.onBoundaryEvent = fn
}

// Run processes disconnects until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// register adds a client synchronously, so the handler can greet it with
// OpReady right away.
func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}

	h.clients[client] = true
	h.logger.Info("client connected",
		zap.String("role", string(client.role)),
		zap.String("identity", client.identity),
		zap.Int("connections", len(h.clients)),
	)
	return true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Info("client disconnected",
		zap.String("role", string(client.role)),
		zap.String("identity", client.identity),
		zap.Int("connections", len(h.clients)),
	)
}

// BroadcastToAll sends event to every observer. A client whose buffer is
// full is dropped rather than allowed to stall the broadcast.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal broadcast event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.role != RoleObserver {
			continue
		}
		select {
		case client.send <- data:
		default:
			go h.drop(client)
		}
	}
}

// ConnectionCount reports connected clients per role.
func (h *Hub) ConnectionCount() map[Role]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := map[Role]int{RoleRelay: 0, RoleObserver: 0}
	for client := range h.clients {
		counts[client.role]++
	}
	return counts
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Shutdown closes every connection and stops Run.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return
	default:
	}
	close(h.done)

	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]bool)
	h.logger.Info("hub shut down, all connections closed")
}
