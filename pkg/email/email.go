// Package email sends the session attendance report.
//
// EmailSender hides the provider. The Resend implementation is the only one
// that talks to the network; NewRecorder is used when e-mail is not
// configured and in tests.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/resend/resend-go/v3"

	"github.com/akinalp/rollcall/models"
)

// EmailSender delivers a rendered session report.
type EmailSender interface {
	SendSessionReport(ctx context.Context, to []string, detail *models.SessionDetail) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
}

// NewResendSender builds a sender backed by the Resend API. fromEmail must
// belong to a domain verified in Resend.
func NewResendSender(apiKey, fromEmail string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (s *resendSender) SendSessionReport(ctx context.Context, to []string, detail *models.SessionDetail) error {
	subject, html, err := RenderSessionReport(detail)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("rollcall <%s>", s.fromEmail),
		To:      to,
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send session report: %w", err)
	}
	return nil
}

// SentReport is one delivery captured by a Recorder.
type SentReport struct {
	To      []string
	Subject string
	HTML    string
}

// Recorder is an EmailSender that keeps reports in memory.
type Recorder struct {
	mu   sync.Mutex
	Sent []SentReport
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendSessionReport(_ context.Context, to []string, detail *models.SessionDetail) error {
	subject, html, err := RenderSessionReport(detail)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, SentReport{To: append([]string(nil), to...), Subject: subject, HTML: html})
	return nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"clock":    formatClock,
	"duration": formatDuration,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#1e293b;">
  <h1 style="font-size:20px;">Session of {{.Date}}</h1>
  <h2 style="font-size:16px;">Attendance ({{len .Members}})</h2>
  {{if .Members}}
  <table cellpadding="4" style="border-collapse:collapse;">
    <tr><th align="left">Member</th><th align="left">From</th><th align="left">To</th><th align="left">Time</th></tr>
    {{range .Members}}
    <tr><td>{{.Name}} ({{.DiscordName}})</td><td>{{clock .Start}}</td><td>{{clock .End}}</td><td>{{duration .DurationSeconds}}</td></tr>
    {{end}}
  </table>
  {{else}}<p>Nobody attended.</p>{{end}}
  <h2 style="font-size:16px;">Games ({{len .Games}})</h2>
  {{if .Games}}
  <table cellpadding="4" style="border-collapse:collapse;">
    <tr><th align="left">Game</th><th align="left">From</th><th align="left">To</th><th align="left">Time</th></tr>
    {{range .Games}}
    <tr><td>{{.Name}}</td><td>{{clock .Start}}</td><td>{{clock .End}}</td><td>{{duration .DurationSeconds}}</td></tr>
    {{end}}
  </table>
  {{else}}<p>No games were played.</p>{{end}}
</body>
</html>`))

// RenderSessionReport returns the subject and HTML body for a session.
func RenderSessionReport(detail *models.SessionDetail) (string, string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, detail); err != nil {
		return "", "", fmt.Errorf("failed to render session report: %w", err)
	}
	subject := fmt.Sprintf("Session report %s: %d attended", detail.Date, len(detail.Members))
	return subject, buf.String(), nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.UTC().Format("Mon 15:04 UTC")
}

func formatDuration(secs *int64) string {
	if secs == nil {
		return "?"
	}
	d := time.Duration(*secs) * time.Second
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
