package models

import "time"

// The types below are read-only "view models" built by the query layer.
// They join entities for presentation and add the derived duration; none of
// them is ever written back.

// DurationSeconds is the derived length of a bounded record, nil when either
// bound is missing.
func DurationSeconds(b Bounds) *int64 {
	d, ok := b.Duration()
	if !ok {
		return nil
	}
	secs := int64(d / time.Second)
	return &secs
}

// AttendanceView is one member's bounds within a session.
type AttendanceView struct {
	SessionMemberID string     `json:"session_member_id"`
	MemberID        string     `json:"member_id"`
	Name            string     `json:"name"`
	DiscordName     string     `json:"discord_name"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

// GamePlayView is one game's bounds within a session.
type GamePlayView struct {
	SessionGameID   string     `json:"session_game_id"`
	GameID          string     `json:"game_id"`
	Name            string     `json:"name"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

// SessionDetail is a session with everything observed in it.
type SessionDetail struct {
	Session
	Members []AttendanceView `json:"members"`
	Games   []GamePlayView   `json:"games"`
}

// MemberSessionView is one session a member attended.
type MemberSessionView struct {
	SessionID       string     `json:"session_id"`
	Date            string     `json:"date"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

// GameSessionView is one session a game was played in.
type GameSessionView struct {
	SessionID       string     `json:"session_id"`
	Date            string     `json:"date"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

// MemberGameView is a game a member has played, with the sessions the game
// was observed in.
type MemberGameView struct {
	GameID    string            `json:"game_id"`
	Name      string            `json:"name"`
	FirstSeen time.Time         `json:"first_seen"`
	Sessions  []GameSessionView `json:"sessions"`
}

// GameDetail is a game with its session history and known players.
type GameDetail struct {
	Game
	Sessions []GameSessionView `json:"sessions"`
	Players  []Member          `json:"players"`
}
