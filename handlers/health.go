package handlers

import (
	"context"
	"net/http"

	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/ws"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectionCounter is satisfied by *ws.Hub.
type ConnectionCounter interface {
	ConnectionCount() map[ws.Role]int
}

type HealthHandler struct {
	db  Pinger
	hub ConnectionCounter
}

func NewHealthHandler(db Pinger, hub ConnectionCounter) *HealthHandler {
	return &HealthHandler{db: db, hub: hub}
}

// Check godoc
// GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.hub.ConnectionCount(),
	})
}
