package models

import "time"

// SessionMember records a member's observed attendance bounds in a session.
// There is at most one per (session, member); later events widen it.
type SessionMember struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	MemberID  string `json:"member_id"`
	Bounds
}

// SessionGame records when a game was being played during a session.
// There is at most one per (session, game).
type SessionGame struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
	Bounds
}

// MemberGame records that a member has played a game at least once.
// It carries no bounds and is never updated after creation.
type MemberGame struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	GameID    string    `json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
}
