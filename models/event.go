package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/rollcall/pkg"
)

// Transition is the direction of a boundary event.
type Transition string

const (
	TransitionEnter Transition = "enter"
	TransitionExit  Transition = "exit"
)

// EventKind says which join record a boundary event feeds.
type EventKind string

const (
	// KindMemberPresence tracks a member in the voice channel (SessionMember).
	KindMemberPresence EventKind = "member_presence"
	// KindMemberActivity tracks a member playing a game: it ensures the Game
	// and the MemberGame link, then widens the SessionGame bounds.
	KindMemberActivity EventKind = "member_activity"
	// KindGameActivity only widens the SessionGame bounds; no MemberGame link
	// is recorded.
	KindGameActivity EventKind = "game_activity"
)

// BoundaryEvent is the single input of the attendance reconciler.
type BoundaryEvent struct {
	Kind       EventKind  `json:"kind"`
	Handle     string     `json:"handle"`
	Game       string     `json:"game,omitempty"`
	Transition Transition `json:"transition"`
	At         time.Time  `json:"at"`
}

// Validate rejects events an adapter should never have produced.
func (e BoundaryEvent) Validate() error {
	switch e.Transition {
	case TransitionEnter, TransitionExit:
	default:
		return fmt.Errorf("%w: unknown transition %q", pkg.ErrMalformedInput, e.Transition)
	}

	switch e.Kind {
	case KindMemberPresence:
	case KindMemberActivity, KindGameActivity:
		if strings.TrimSpace(e.Game) == "" {
			return fmt.Errorf("%w: %s event without a game", pkg.ErrMalformedInput, e.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown event kind %q", pkg.ErrMalformedInput, e.Kind)
	}

	if strings.TrimSpace(e.Handle) == "" {
		return fmt.Errorf("%w: event without a member handle", pkg.ErrMalformedInput)
	}
	if e.At.IsZero() {
		return fmt.Errorf("%w: event without a timestamp", pkg.ErrMalformedInput)
	}
	return nil
}

// SkipReason explains why an event was dropped without touching the store.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipOutsideWindow SkipReason = "outside_window"
	SkipUnknownMember SkipReason = "unknown_member"
)

// ReconcileOutcome reports what a boundary event did.
//
// Skipped events are expected platform noise, not failures. Changed is false
// when the event was a replay that left every record as it was.
type ReconcileOutcome struct {
	Event         BoundaryEvent  `json:"event"`
	Skipped       SkipReason     `json:"skipped,omitempty"`
	Session       *Session       `json:"session,omitempty"`
	SessionMember *SessionMember `json:"session_member,omitempty"`
	SessionGame   *SessionGame   `json:"session_game,omitempty"`
	MemberGame    *MemberGame    `json:"member_game,omitempty"`
	Changed       bool           `json:"changed"`
}

// Applied reports whether the event reached the store.
func (o *ReconcileOutcome) Applied() bool {
	return o.Skipped == SkipNone
}
