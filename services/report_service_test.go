package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/pkg/email"
)

func TestSendSessionReport(t *testing.T) {
	store := newTestStore(t)
	addMember(t, store, "ann", false)
	attendance := NewAttendanceService(store, testWindow, zap.NewNop())
	outcome, err := attendance.RecordBoundaryEvent(context.Background(), presence("ann", models.TransitionEnter, friday(19, 0)))
	require.NoError(t, err)

	recorder := email.NewRecorder()
	svc := NewReportService(NewQueryService(store), recorder, []string{"crew@example.com"}, zap.NewNop())

	receipt, err := svc.SendSessionReport(context.Background(), models.SystemActor(), outcome.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-24", receipt.Date)
	assert.Equal(t, 1, receipt.Attendees)

	require.Len(t, recorder.Sent, 1)
	assert.Equal(t, []string{"crew@example.com"}, recorder.Sent[0].To)
	assert.Contains(t, recorder.Sent[0].HTML, "ann")

	_, err = svc.SendSessionReport(context.Background(), models.SystemActor(), "missing")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReportRequiresConfiguredSender(t *testing.T) {
	store := newTestStore(t)
	svc := NewReportService(NewQueryService(store), nil, nil, zap.NewNop())

	_, err := svc.SendSessionReport(context.Background(), models.SystemActor(), "any")
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = svc.SendSessionReport(context.Background(), &models.Member{DiscordName: "ann"}, "any")
	require.ErrorIs(t, err, pkg.ErrForbidden)
}
