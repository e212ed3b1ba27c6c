package main

import (
	"github.com/akinalp/rollcall/handlers"
	"github.com/akinalp/rollcall/ws"
)

// Handlers holds the HTTP handler instances.
type Handlers struct {
	Member     *handlers.MemberHandler
	Session    *handlers.SessionHandler
	Game       *handlers.GameHandler
	Attendance *handlers.AttendanceHandler
	Health     *handlers.HealthHandler
	LiveKit    *handlers.LiveKitWebhookHandler // nil when LiveKit is not configured
	WS         *ws.Handler

	gatewayEnabled bool
}

func initHandlers(rt *app, svcs *Services, res *Resources, hub *ws.Hub) *Handlers {
	h := &Handlers{
		Member:     handlers.NewMemberHandler(svcs.Queries, svcs.Members),
		Session:    handlers.NewSessionHandler(svcs.Queries, svcs.Reports),
		Game:       handlers.NewGameHandler(svcs.Queries),
		Attendance: handlers.NewAttendanceHandler(svcs.Queries),
		Health:     handlers.NewHealthHandler(rt.db.Conn, hub),
		WS:         ws.NewHandler(hub, svcs.Auth, svcs.Auth, res.GatewayFailures, rt.logger),

		gatewayEnabled: rt.cfg.Gateway.Enabled(),
	}

	if rt.cfg.LiveKit.Enabled() {
		h.LiveKit = handlers.NewLiveKitWebhookHandler(svcs.Adapter, rt.cfg.LiveKit.APIKey, rt.cfg.LiveKit.APISecret, rt.logger)
	}
	return h
}
