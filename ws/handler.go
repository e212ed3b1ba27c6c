package ws

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg/ratelimit"
)

// TokenValidator checks observer bearer tokens.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// GatewayAuthenticator checks the relay's shared key.
type GatewayAuthenticator interface {
	VerifyGatewayKey(key string) bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers authenticate with a token and relays with a key, neither of
	// which a browser attaches automatically, so origin checks add nothing.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into hub clients.
type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	gateway  GatewayAuthenticator
	failures *ratelimit.AttemptLimiter
	logger   *zap.Logger
}

func NewHandler(hub *Hub, tokens TokenValidator, gateway GatewayAuthenticator, failures *ratelimit.AttemptLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		tokens:   tokens,
		gateway:  gateway,
		failures: failures,
		logger:   logger.Named("gateway"),
	}
}

// HandleObserver serves GET /ws?token=<jwt>.
func (h *Handler) HandleObserver(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	h.serve(w, r, RoleObserver, claims.DiscordName)
}

// HandleGateway serves GET /gateway?key=<key> for the platform relay.
// Failed key checks count against the caller's IP; once the limit is hit
// every attempt is refused until the window passes, even with the right key.
func (h *Handler) HandleGateway(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)

	if h.failures.Blocked(ip) {
		retry := h.failures.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		http.Error(w, "too many failed attempts, retry in "+ratelimit.FormatRetryMessage(retry), http.StatusTooManyRequests)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.Header.Get("X-Gateway-Key")
	}
	if !h.gateway.VerifyGatewayKey(key) {
		h.failures.Allow(ip)
		h.logger.Warn("gateway key rejected", zap.String("ip", ip))
		http.Error(w, "invalid gateway key", http.StatusUnauthorized)
		return
	}
	h.failures.Reset(ip)

	h.serve(w, r, RoleRelay, ip)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, role Role, identity string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("role", string(role)), zap.String("identity", identity), zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, role, identity)
	if !h.hub.register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.sendEvent(Event{Op: OpReady, Data: ReadyData{Role: role, Identity: identity}})
	client.ReadPump() // blocks until the connection closes
}
