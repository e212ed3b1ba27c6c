package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/services"
)

type capturingHub struct {
	voice    func(models.VoiceStateChange) error
	activity func(models.ActivityChange) error
	boundary func(models.BoundaryEvent) error
}

func (h *capturingHub) OnVoiceStateUpdate(fn func(models.VoiceStateChange) error) { h.voice = fn }
func (h *capturingHub) OnActivityUpdate(fn func(models.ActivityChange) error) { h.activity = fn }
func (h *capturingHub) OnBoundaryEvent(fn func(models.BoundaryEvent) error) { h.boundary = fn }

// ctxAdapter fails with the context's error once it is cancelled, the way
// a store transaction does.
type ctxAdapter struct {
	services.EventAdapter
	calls int
}

func (a *ctxAdapter) HandleVoiceState(ctx context.Context, _ models.VoiceStateChange) ([]*models.ReconcileOutcome, error) {
	a.calls++
	return nil, ctx.Err()
}

func (a *ctxAdapter) HandleActivity(ctx context.Context, _ models.ActivityChange) ([]*models.ReconcileOutcome, error) {
	a.calls++
	return nil, ctx.Err()
}

func (a *ctxAdapter) HandleBoundaryEvent(ctx context.Context, _ models.BoundaryEvent) (*models.ReconcileOutcome, error) {
	a.calls++
	return nil, ctx.Err()
}

func TestRelayCallbacksStopAtShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := &capturingHub{}
	adapter := &ctxAdapter{}
	registerHubCallbacks(ctx, hub, adapter)
	require.NotNil(t, hub.voice)
	require.NotNil(t, hub.activity)
	require.NotNil(t, hub.boundary)

	assert.NoError(t, hub.voice(models.VoiceStateChange{Handle: "ann", AfterChannelID: "lobby"}))
	assert.NoError(t, hub.activity(models.ActivityChange{Handle: "ann", AfterActivity: "Chess"}))
	assert.NoError(t, hub.boundary(models.BoundaryEvent{Handle: "ann"}))

	cancel()

	assert.ErrorIs(t, hub.voice(models.VoiceStateChange{Handle: "ann", BeforeChannelID: "lobby"}), context.Canceled)
	assert.ErrorIs(t, hub.activity(models.ActivityChange{Handle: "ann", BeforeActivity: "Chess"}), context.Canceled)
	assert.ErrorIs(t, hub.boundary(models.BoundaryEvent{Handle: "ann"}), context.Canceled)
	assert.Equal(t, 6, adapter.calls)
}
