package main

import (
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/pkg/cache"
	"github.com/akinalp/rollcall/pkg/email"
	"github.com/akinalp/rollcall/pkg/ratelimit"
	"github.com/akinalp/rollcall/services"
	"github.com/akinalp/rollcall/ws"
)

// Services holds every service instance built for `serve`.
type Services struct {
	Auth       services.AuthService
	Attendance services.AttendanceService
	Adapter    services.EventAdapter
	Queries    services.QueryService
	Members    services.MemberService
	Reports    services.ReportService
}

// Resources are the background-owning helpers closed at shutdown.
type Resources struct {
	Dedup           *cache.TTLCache[string, struct{}]
	GatewayFailures *ratelimit.AttemptLimiter
}

func (r *Resources) Close() {
	r.Dedup.Close()
	r.GatewayFailures.Close()
}

func initServices(rt *app, hub ws.EventPublisher) (*Services, *Resources, error) {
	cfg := rt.cfg

	window, err := cfg.Window.SessionWindow()
	if err != nil {
		return nil, nil, err
	}

	res := &Resources{
		Dedup:           cache.New[string, struct{}](cfg.Gateway.DedupTTL, cfg.Gateway.DedupTTL),
		GatewayFailures: ratelimit.NewAttemptLimiter(cfg.Gateway.MaxFailedAttempts, cfg.Gateway.FailureWindow),
	}

	queries := services.NewQueryService(rt.store)
	attendance := services.NewAttendanceService(rt.store, window, rt.logger)

	var sender email.EmailSender
	if cfg.Email.Enabled() {
		sender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	} else {
		rt.logger.Info("e-mail reports disabled", zap.Bool("recipients_set", len(cfg.Email.ReportRecipients) > 0))
	}

	return &Services{
		Auth:       services.NewAuthService(rt.store.Members, cfg.JWT.Secret, cfg.JWT.TokenExpiry, cfg.Gateway.KeyHash),
		Attendance: attendance,
		Adapter:    services.NewEventAdapter(attendance, hub, res.Dedup, rt.logger),
		Queries:    queries,
		Members:    services.NewMemberService(rt.store.Members, rt.logger),
		Reports:    services.NewReportService(queries, sender, cfg.Email.ReportRecipients, rt.logger),
	}, res, nil
}
