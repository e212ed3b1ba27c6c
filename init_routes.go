package main

import (
	"net/http"

	"github.com/akinalp/rollcall/middleware"
	"github.com/akinalp/rollcall/repository"
	"github.com/akinalp/rollcall/services"
)

// initRoutes binds every endpoint to mux.
//
// Literal paths are registered before their parametric siblings so the
// listing reads top-down; the 1.22 ServeMux resolves them by specificity
// either way.
func initRoutes(mux *http.ServeMux, h *Handlers, authService services.AuthService, members repository.MemberRepository) {
	authMw := middleware.NewAuthMiddleware(authService, members)
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}

	mux.HandleFunc("GET /api/health", h.Health.Check)

	// Sessions
	mux.Handle("GET /api/sessions", auth(h.Session.List))
	mux.Handle("GET /api/sessions/{id}", auth(h.Session.Get))
	mux.Handle("POST /api/sessions/{id}/report", auth(h.Session.SendReport))

	// Members
	mux.Handle("GET /api/members", auth(h.Member.List))
	mux.Handle("POST /api/members", auth(h.Member.Register))
	mux.Handle("GET /api/members/{id}", auth(h.Member.Get))
	mux.Handle("PATCH /api/members/{id}", auth(h.Member.Update))
	mux.Handle("DELETE /api/members/{id}", auth(h.Member.Remove))
	mux.Handle("GET /api/members/{id}/sessions", auth(h.Member.Sessions))
	mux.Handle("GET /api/members/{id}/games", auth(h.Member.Games))

	// Games
	mux.Handle("GET /api/games", auth(h.Game.List))
	mux.Handle("GET /api/games/{id}", auth(h.Game.Get))

	// Join records
	mux.Handle("GET /api/session-members", auth(h.Attendance.ListSessionMembers))
	mux.Handle("GET /api/session-members/{id}", auth(h.Attendance.GetSessionMember))
	mux.Handle("GET /api/session-games", auth(h.Attendance.ListSessionGames))
	mux.Handle("GET /api/session-games/{id}", auth(h.Attendance.GetSessionGame))
	mux.Handle("GET /api/member-games", auth(h.Attendance.ListMemberGames))
	mux.Handle("GET /api/member-games/{id}", auth(h.Attendance.GetMemberGame))

	// Event sources. The webhook verifies LiveKit's own signature and the
	// gateway its key, so neither sits behind the bearer middleware.
	if h.LiveKit != nil {
		mux.HandleFunc("POST /api/webhooks/livekit", h.LiveKit.Receive)
	}
	if h.gatewayEnabled {
		mux.HandleFunc("GET /gateway", h.WS.HandleGateway)
	}
	mux.HandleFunc("GET /ws", h.WS.HandleObserver)
}
