package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/repository"
)

// testWindow is Friday 18:00 to Saturday 02:59 in UTC.
var testWindow = models.SessionWindow{
	StartWeekday: time.Friday,
	StartHour:    18,
	EndWeekday:   time.Saturday,
	EndHour:      2,
	Location:     time.UTC,
}

// friday returns a moment on Friday 2025-10-24; hours past 23 roll into
// Saturday.
func friday(hour, minute int) time.Time {
	return time.Date(2025, 10, 24, hour, minute, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "rollcall.db"), database.Migrations(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewStore(db)
}

func addMember(t *testing.T, store *repository.Store, handle string, admin bool) *models.Member {
	t.Helper()

	m := &models.Member{DiscordName: handle, Name: handle, IsAdmin: admin, InRotation: true}
	require.NoError(t, store.Members.Create(context.Background(), m))
	return m
}

func presence(handle string, transition models.Transition, at time.Time) models.BoundaryEvent {
	return models.BoundaryEvent{Kind: models.KindMemberPresence, Handle: handle, Transition: transition, At: at}
}

func activity(handle, game string, transition models.Transition, at time.Time) models.BoundaryEvent {
	return models.BoundaryEvent{Kind: models.KindMemberActivity, Handle: handle, Game: game, Transition: transition, At: at}
}
