package handlers

import (
	"net/http"

	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/services"
)

type SessionHandler struct {
	queries services.QueryService
	reports services.ReportService
}

func NewSessionHandler(queries services.QueryService, reports services.ReportService) *SessionHandler {
	return &SessionHandler{queries: queries, reports: reports}
}

// List godoc
// GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.queries.ListSessions(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, sessions)
}

// Get godoc
// GET /api/sessions/{id}
// The session with its attendees and games, each with bounds and duration.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.queries.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, detail)
}

// SendReport godoc
// POST /api/sessions/{id}/report
func (h *SessionHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	receipt, err := h.reports.SendSessionReport(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, receipt)
}
