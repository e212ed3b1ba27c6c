package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/repository"
)

// AttendanceService reconciles boundary events into sessions and join
// records.
//
// Per (member, session) and (game, session) pair a record is either absent
// or present. The first event creates it; later events only widen its
// bounds. Delivery may be duplicated or reordered, so every write is a
// merge, never an overwrite.
type AttendanceService interface {
	RecordBoundaryEvent(ctx context.Context, event models.BoundaryEvent) (*models.ReconcileOutcome, error)
}

type attendanceService struct {
	store  *repository.Store
	window models.SessionWindow
	logger *zap.Logger
}

func NewAttendanceService(store *repository.Store, window models.SessionWindow, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		store:  store,
		window: window,
		logger: logger.Named("attendance"),
	}
}

// RecordBoundaryEvent applies one event. Out-of-window events and unknown
// handles come back as skipped outcomes with a nil error; only malformed
// events and store failures are errors, and those leave nothing behind.
func (s *attendanceService) RecordBoundaryEvent(ctx context.Context, event models.BoundaryEvent) (*models.ReconcileOutcome, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	outcome := &models.ReconcileOutcome{Event: event}

	if !s.window.IsValidMoment(event.At) {
		outcome.Skipped = models.SkipOutsideWindow
		s.logSkip(outcome)
		return outcome, nil
	}

	sessionDate := s.window.CanonicalDate(event.At)

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		member, err := tx.Members.GetByDiscordName(ctx, event.Handle)
		if errors.Is(err, pkg.ErrNotFound) {
			outcome.Skipped = models.SkipUnknownMember
			return nil
		}
		if err != nil {
			return err
		}

		session, err := tx.Sessions.GetOrCreate(ctx, sessionDate.Format(models.SessionDateLayout))
		if err != nil {
			return err
		}
		outcome.Session = session

		proposal := s.propose(event, sessionDate)

		switch event.Kind {
		case models.KindMemberPresence:
			return s.mergeSessionMember(ctx, tx, outcome, session, member, proposal)

		case models.KindMemberActivity, models.KindGameActivity:
			game, err := tx.Games.GetOrCreate(ctx, event.Game)
			if err != nil {
				return err
			}
			if event.Kind == models.KindMemberActivity {
				link, created, err := tx.MemberGames.CreateIfAbsent(ctx, member.ID, game.ID)
				if err != nil {
					return err
				}
				outcome.MemberGame = link
				outcome.Changed = outcome.Changed || created
			}
			return s.mergeSessionGame(ctx, tx, outcome, session, game, proposal)
		}
		return fmt.Errorf("%w: unknown event kind %q", pkg.ErrMalformedInput, event.Kind)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record %s %s for %s: %w", event.Kind, event.Transition, event.Handle, err)
	}

	if !outcome.Applied() {
		s.logSkip(outcome)
		return outcome, nil
	}

	s.logger.Debug("boundary event applied",
		zap.String("kind", string(event.Kind)),
		zap.String("handle", event.Handle),
		zap.String("game", event.Game),
		zap.String("transition", string(event.Transition)),
		zap.String("session", outcome.Session.Date),
		zap.Bool("changed", outcome.Changed),
	)
	return outcome, nil
}

// proposal is what an event contributes to a join record's bounds.
type proposal struct {
	// start/end feed Bounds.Merge on an existing record.
	start, end *time.Time
	// initial is the bounds of a freshly created record.
	initial models.Bounds
}

// propose turns an event into bounds. ENTER proposes a start. EXIT proposes
// an end, and when it creates the record it backfills the start to the
// moment the window opened: the member was evidently present before
// tracking saw them.
func (s *attendanceService) propose(event models.BoundaryEvent, sessionDate time.Time) proposal {
	at := event.At.UTC()
	if event.Transition == models.TransitionEnter {
		return proposal{
			start:   &at,
			initial: models.Bounds{Start: &at, End: &at},
		}
	}

	opened := s.window.StartOf(sessionDate).UTC()
	if opened.After(at) {
		opened = at
	}
	return proposal{
		end:     &at,
		initial: models.Bounds{Start: &opened, End: &at},
	}
}

func (s *attendanceService) mergeSessionMember(
	ctx context.Context,
	tx *repository.Store,
	outcome *models.ReconcileOutcome,
	session *models.Session,
	member *models.Member,
	p proposal,
) error {
	record, err := tx.SessionMembers.Find(ctx, session.ID, member.ID)
	if errors.Is(err, pkg.ErrNotFound) {
		record = &models.SessionMember{SessionID: session.ID, MemberID: member.ID, Bounds: p.initial}
		if err := tx.SessionMembers.Create(ctx, record); err != nil {
			return err
		}
		outcome.SessionMember = record
		outcome.Changed = true
		return nil
	}
	if err != nil {
		return err
	}

	merged, changed, err := record.Bounds.Merge(p.start, p.end)
	if err != nil {
		return err
	}
	if changed {
		if err := tx.SessionMembers.UpdateBounds(ctx, record.ID, merged); err != nil {
			return err
		}
		record.Bounds = merged
	}
	outcome.SessionMember = record
	outcome.Changed = outcome.Changed || changed
	return nil
}

func (s *attendanceService) mergeSessionGame(
	ctx context.Context,
	tx *repository.Store,
	outcome *models.ReconcileOutcome,
	session *models.Session,
	game *models.Game,
	p proposal,
) error {
	record, err := tx.SessionGames.Find(ctx, session.ID, game.ID)
	if errors.Is(err, pkg.ErrNotFound) {
		record = &models.SessionGame{SessionID: session.ID, GameID: game.ID, Bounds: p.initial}
		if err := tx.SessionGames.Create(ctx, record); err != nil {
			return err
		}
		outcome.SessionGame = record
		outcome.Changed = true
		return nil
	}
	if err != nil {
		return err
	}

	merged, changed, err := record.Bounds.Merge(p.start, p.end)
	if err != nil {
		return err
	}
	if changed {
		if err := tx.SessionGames.UpdateBounds(ctx, record.ID, merged); err != nil {
			return err
		}
		record.Bounds = merged
	}
	outcome.SessionGame = record
	outcome.Changed = outcome.Changed || changed
	return nil
}

func (s *attendanceService) logSkip(outcome *models.ReconcileOutcome) {
	s.logger.Debug("boundary event skipped",
		zap.String("reason", string(outcome.Skipped)),
		zap.String("kind", string(outcome.Event.Kind)),
		zap.String("handle", outcome.Event.Handle),
		zap.Time("at", outcome.Event.At),
	)
}
