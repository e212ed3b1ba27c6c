package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg/cache"
	"github.com/akinalp/rollcall/ws"
)

type fakeAttendance struct {
	mu     sync.Mutex
	events []models.BoundaryEvent
	fail   map[string]error // by game
}

func (f *fakeAttendance) RecordBoundaryEvent(_ context.Context, event models.BoundaryEvent) (*models.ReconcileOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail[event.Game]; err != nil {
		return nil, err
	}
	f.events = append(f.events, event)
	return &models.ReconcileOutcome{Event: event, Session: &models.Session{ID: "s1"}, Changed: true}, nil
}

type fakePublisher struct {
	events []ws.Event
}

func (f *fakePublisher) BroadcastToAll(event ws.Event) {
	f.events = append(f.events, event)
}

func newTestAdapter(attendance AttendanceService, dedup EventDeduplicator) (*eventAdapter, *fakePublisher) {
	pub := &fakePublisher{}
	a := NewEventAdapter(attendance, pub, dedup, zap.NewNop()).(*eventAdapter)
	a.now = func() time.Time { return friday(20, 0) }
	return a, pub
}

func TestVoiceStateMapping(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          []models.Transition
	}{
		{"join", "", "lobby", []models.Transition{models.TransitionEnter}},
		{"leave", "lobby", "", []models.Transition{models.TransitionExit}},
		{"move", "lobby", "raid", nil},
		{"mute toggle", "lobby", "lobby", nil},
		{"nothing", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAttendance{}
			a, _ := newTestAdapter(fake, nil)

			outcomes, err := a.HandleVoiceState(context.Background(), models.VoiceStateChange{
				Handle: "ann", BeforeChannelID: tt.before, AfterChannelID: tt.after, At: friday(19, 0),
			})
			require.NoError(t, err)
			assert.NotNil(t, outcomes)

			var got []models.Transition
			for _, e := range fake.events {
				assert.Equal(t, models.KindMemberPresence, e.Kind)
				got = append(got, e.Transition)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivitySwitchExitsThenEnters(t *testing.T) {
	fake := &fakeAttendance{}
	a, pub := newTestAdapter(fake, nil)

	outcomes, err := a.HandleActivity(context.Background(), models.ActivityChange{
		Handle: "ann", BeforeActivity: "Chess", AfterActivity: "Valorant", At: friday(21, 0),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.Len(t, fake.events, 2)
	assert.Equal(t, "Chess", fake.events[0].Game)
	assert.Equal(t, models.TransitionExit, fake.events[0].Transition)
	assert.Equal(t, "Valorant", fake.events[1].Game)
	assert.Equal(t, models.TransitionEnter, fake.events[1].Transition)

	require.Len(t, pub.events, 2)
	assert.Equal(t, ws.OpAttendanceUpdate, pub.events[0].Op)
}

func TestMissingTimestampUsesNow(t *testing.T) {
	fake := &fakeAttendance{}
	a, _ := newTestAdapter(fake, nil)

	_, err := a.HandleVoiceState(context.Background(), models.VoiceStateChange{Handle: "ann", AfterChannelID: "lobby"})
	require.NoError(t, err)
	require.Len(t, fake.events, 1)
	assert.True(t, fake.events[0].At.Equal(friday(20, 0)))
}

func TestDuplicateDeliveryDropped(t *testing.T) {
	fake := &fakeAttendance{}
	dedup := cache.New[string, struct{}](time.Minute, time.Minute)
	defer dedup.Close()
	a, pub := newTestAdapter(fake, dedup)

	change := models.VoiceStateChange{Handle: "ann", AfterChannelID: "lobby", At: friday(19, 0)}
	_, err := a.HandleVoiceState(context.Background(), change)
	require.NoError(t, err)
	outcomes, err := a.HandleVoiceState(context.Background(), change)
	require.NoError(t, err)

	assert.Empty(t, outcomes)
	assert.Len(t, fake.events, 1)
	assert.Len(t, pub.events, 1)
}

func TestFailedEventCanBeRetried(t *testing.T) {
	boom := errors.New("disk full")
	fake := &fakeAttendance{fail: map[string]error{"Chess": boom}}
	dedup := cache.New[string, struct{}](time.Minute, time.Minute)
	defer dedup.Close()
	a, _ := newTestAdapter(fake, dedup)

	change := models.ActivityChange{Handle: "ann", BeforeActivity: "Chess", AfterActivity: "Valorant", At: friday(21, 0)}
	outcomes, err := a.HandleActivity(context.Background(), change)
	require.ErrorIs(t, err, boom)
	require.Len(t, outcomes, 1, "the ENTER still applies")

	fake.fail = nil
	outcomes, err = a.HandleActivity(context.Background(), change)
	require.NoError(t, err)
	require.Len(t, outcomes, 1, "only the failed EXIT is retried")
	assert.Equal(t, "Chess", outcomes[0].Event.Game)
}

func TestUnchangedOutcomeNotBroadcast(t *testing.T) {
	store := newTestStore(t)
	addMember(t, store, "ann", false)
	a, pub := newTestAdapter(NewAttendanceService(store, testWindow, zap.NewNop()), nil)

	event := presence("ann", models.TransitionEnter, friday(19, 0))
	_, err := a.HandleBoundaryEvent(context.Background(), event)
	require.NoError(t, err)
	outcome, err := a.HandleBoundaryEvent(context.Background(), event)
	require.NoError(t, err)

	assert.False(t, outcome.Changed)
	assert.Len(t, pub.events, 1)
}
