package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/pkg/email"
)

// ReportService mails a session's attendance summary to the configured
// recipients.
type ReportService interface {
	SendSessionReport(ctx context.Context, actor *models.Member, sessionID string) (*ReportReceipt, error)
}

// ReportReceipt says where a report went.
type ReportReceipt struct {
	SessionID  string   `json:"session_id"`
	Date       string   `json:"date"`
	Recipients []string `json:"recipients"`
	Attendees  int      `json:"attendees"`
}

type reportService struct {
	queries    QueryService
	sender     email.EmailSender
	recipients []string
	logger     *zap.Logger
}

// NewReportService builds the ReportService. A nil sender disables reports.
func NewReportService(queries QueryService, sender email.EmailSender, recipients []string, logger *zap.Logger) ReportService {
	return &reportService{
		queries:    queries,
		sender:     sender,
		recipients: recipients,
		logger:     logger.Named("report"),
	}
}

func (s *reportService) SendSessionReport(ctx context.Context, actor *models.Member, sessionID string) (*ReportReceipt, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if s.sender == nil || len(s.recipients) == 0 {
		return nil, fmt.Errorf("%w: e-mail reports are not configured", pkg.ErrBadRequest)
	}

	detail, err := s.queries.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sender.SendSessionReport(ctx, s.recipients, detail); err != nil {
		return nil, err
	}

	s.logger.Info("session report sent",
		zap.String("session", detail.Date),
		zap.Int("recipients", len(s.recipients)),
		zap.String("actor", actor.DiscordName),
	)
	return &ReportReceipt{
		SessionID:  detail.ID,
		Date:       detail.Date,
		Recipients: s.recipients,
		Attendees:  len(detail.Members),
	}, nil
}
