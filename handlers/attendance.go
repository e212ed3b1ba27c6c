package handlers

import (
	"context"
	"net/http"

	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/services"
)

// AttendanceHandler exposes the raw join records. The detail views on
// sessions, members and games are usually more useful; these exist for
// exports and debugging.
type AttendanceHandler struct {
	queries services.QueryService
}

func NewAttendanceHandler(queries services.QueryService) *AttendanceHandler {
	return &AttendanceHandler{queries: queries}
}

// GET /api/session-members
func (h *AttendanceHandler) ListSessionMembers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, func() (any, error) { return h.queries.ListSessionMembers(r.Context()) })
}

// GET /api/session-members/{id}
func (h *AttendanceHandler) GetSessionMember(w http.ResponseWriter, r *http.Request) {
	writeByID(w, r, func(ctx context.Context, id string) (any, error) { return h.queries.GetSessionMember(ctx, id) })
}

// GET /api/session-games
func (h *AttendanceHandler) ListSessionGames(w http.ResponseWriter, r *http.Request) {
	writeResult(w, func() (any, error) { return h.queries.ListSessionGames(r.Context()) })
}

// GET /api/session-games/{id}
func (h *AttendanceHandler) GetSessionGame(w http.ResponseWriter, r *http.Request) {
	writeByID(w, r, func(ctx context.Context, id string) (any, error) { return h.queries.GetSessionGame(ctx, id) })
}

// GET /api/member-games
func (h *AttendanceHandler) ListMemberGames(w http.ResponseWriter, r *http.Request) {
	writeResult(w, func() (any, error) { return h.queries.ListMemberGames(r.Context()) })
}

// GET /api/member-games/{id}
func (h *AttendanceHandler) GetMemberGame(w http.ResponseWriter, r *http.Request) {
	writeByID(w, r, func(ctx context.Context, id string) (any, error) { return h.queries.GetMemberGame(ctx, id) })
}

func writeResult(w http.ResponseWriter, fn func() (any, error)) {
	result, err := fn()
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, result)
}

func writeByID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (any, error)) {
	writeResult(w, func() (any, error) { return fn(r.Context(), r.PathValue("id")) })
}
