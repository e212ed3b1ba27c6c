package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg/cache"
	"github.com/akinalp/rollcall/ws"
)

// EventAdapter turns platform transitions into boundary events and feeds
// them to the reconciler. It knows nothing about sessions or windows.
//
// Voice:    none→channel ENTER, channel→none EXIT, channel→channel nothing.
// Activity: none→game ENTER, game→none EXIT, A→B EXIT A then ENTER B.
type EventAdapter interface {
	HandleVoiceState(ctx context.Context, change models.VoiceStateChange) ([]*models.ReconcileOutcome, error)
	HandleActivity(ctx context.Context, change models.ActivityChange) ([]*models.ReconcileOutcome, error)
	// HandleBoundaryEvent accepts an already-mapped event from producers
	// that speak the reconciler's vocabulary directly, e.g. game_activity.
	HandleBoundaryEvent(ctx context.Context, event models.BoundaryEvent) (*models.ReconcileOutcome, error)
}

// EventDeduplicator remembers recently seen event fingerprints.
type EventDeduplicator interface {
	SetIfAbsent(key string, value struct{}) bool
	Delete(key string)
}

var _ EventDeduplicator = (*cache.TTLCache[string, struct{}])(nil)

type eventAdapter struct {
	attendance AttendanceService
	hub        ws.EventPublisher
	dedup      EventDeduplicator
	logger     *zap.Logger
	now        func() time.Time
}

// NewEventAdapter wires the adapter. dedup may be nil to disable duplicate
// filtering; the reconciler is idempotent either way.
func NewEventAdapter(attendance AttendanceService, hub ws.EventPublisher, dedup EventDeduplicator, logger *zap.Logger) EventAdapter {
	return &eventAdapter{
		attendance: attendance,
		hub:        hub,
		dedup:      dedup,
		logger:     logger.Named("adapter"),
		now:        time.Now,
	}
}

func (a *eventAdapter) HandleVoiceState(ctx context.Context, change models.VoiceStateChange) ([]*models.ReconcileOutcome, error) {
	before := strings.TrimSpace(change.BeforeChannelID)
	after := strings.TrimSpace(change.AfterChannelID)
	at := a.timestamp(change.At)

	var transition models.Transition
	switch {
	case before == "" && after != "":
		transition = models.TransitionEnter
	case before != "" && after == "":
		transition = models.TransitionExit
	default:
		// Moving between channels, or a mute/deafen update that did not
		// change the channel at all.
		return []*models.ReconcileOutcome{}, nil
	}

	return a.apply(ctx, models.BoundaryEvent{
		Kind:       models.KindMemberPresence,
		Handle:     change.Handle,
		Transition: transition,
		At:         at,
	})
}

func (a *eventAdapter) HandleActivity(ctx context.Context, change models.ActivityChange) ([]*models.ReconcileOutcome, error) {
	before := strings.TrimSpace(change.BeforeActivity)
	after := strings.TrimSpace(change.AfterActivity)
	at := a.timestamp(change.At)

	if before == after {
		return []*models.ReconcileOutcome{}, nil
	}

	var events []models.BoundaryEvent
	if before != "" {
		events = append(events, models.BoundaryEvent{
			Kind: models.KindMemberActivity, Handle: change.Handle, Game: before,
			Transition: models.TransitionExit, At: at,
		})
	}
	if after != "" {
		events = append(events, models.BoundaryEvent{
			Kind: models.KindMemberActivity, Handle: change.Handle, Game: after,
			Transition: models.TransitionEnter, At: at,
		})
	}
	return a.apply(ctx, events...)
}

func (a *eventAdapter) HandleBoundaryEvent(ctx context.Context, event models.BoundaryEvent) (*models.ReconcileOutcome, error) {
	event.At = a.timestamp(event.At)
	outcomes, err := a.apply(ctx, event)
	if err != nil || len(outcomes) == 0 {
		return nil, err
	}
	return outcomes[0], nil
}

// apply reconciles events in order. A failure does not stop later events of
// the same transition: the EXIT of the old game and the ENTER of the new one
// are independent facts.
func (a *eventAdapter) apply(ctx context.Context, events ...models.BoundaryEvent) ([]*models.ReconcileOutcome, error) {
	outcomes := make([]*models.ReconcileOutcome, 0, len(events))
	var errs []error

	for _, event := range events {
		key := fingerprint(event)
		if a.dedup != nil && !a.dedup.SetIfAbsent(key, struct{}{}) {
			a.logger.Debug("duplicate event dropped", zap.String("fingerprint", key))
			continue
		}

		outcome, err := a.attendance.RecordBoundaryEvent(ctx, event)
		if err != nil {
			if a.dedup != nil {
				// let a redelivery retry it
				a.dedup.Delete(key)
			}
			a.logger.Warn("failed to record boundary event",
				zap.String("kind", string(event.Kind)),
				zap.String("handle", event.Handle),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}

		outcomes = append(outcomes, outcome)
		if outcome.Applied() && outcome.Changed && a.hub != nil {
			a.hub.BroadcastToAll(ws.Event{Op: ws.OpAttendanceUpdate, Data: outcome})
		}
	}

	if len(errs) > 0 {
		return outcomes, fmt.Errorf("adapter: %w", errors.Join(errs...))
	}
	return outcomes, nil
}

func (a *eventAdapter) timestamp(at time.Time) time.Time {
	if at.IsZero() {
		return a.now()
	}
	return at
}

func fingerprint(e models.BoundaryEvent) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", e.Kind, e.Handle, e.Game, e.Transition, e.At.UnixNano())
}
