package main

import (
	"context"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/services"
)

// relayHub is the callback surface of *ws.Hub.
type relayHub interface {
	OnVoiceStateUpdate(fn func(models.VoiceStateChange) error)
	OnActivityUpdate(fn func(models.ActivityChange) error)
	OnBoundaryEvent(fn func(models.BoundaryEvent) error)
}

// registerHubCallbacks routes relay ops into the event adapter.
//
// The hub lives in ws and must not import services, so the wiring happens
// here. Callbacks run synchronously in the relay's read loop; a returned
// error is reported back to the relay as an error op. ctx is the server's
// lifetime: once it is cancelled, in-flight reconciliations abort and roll
// back.
func registerHubCallbacks(ctx context.Context, hub relayHub, adapter services.EventAdapter) {
	hub.OnVoiceStateUpdate(func(change models.VoiceStateChange) error {
		_, err := adapter.HandleVoiceState(ctx, change)
		return err
	})

	hub.OnActivityUpdate(func(change models.ActivityChange) error {
		_, err := adapter.HandleActivity(ctx, change)
		return err
	})

	hub.OnBoundaryEvent(func(event models.BoundaryEvent) error {
		_, err := adapter.HandleBoundaryEvent(ctx, event)
		return err
	})
}
