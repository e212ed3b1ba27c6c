package models

import "time"

// SessionWindow describes the weekly span during which presence events count
// toward attendance.
//
// The window opens on StartWeekday at StartHour and closes on EndWeekday at
// EndHour (inclusive). Only the two named weekdays are ever valid; every
// other day of the week is outside any session.
//
// All weekday/hour checks happen in Location. A zero Location means UTC.
type SessionWindow struct {
	StartWeekday time.Weekday
	StartHour    int
	EndWeekday   time.Weekday
	EndHour      int
	Location     *time.Location
}

// DefaultSessionWindow is Friday from 18:00 to Saturday 02:59.
func DefaultSessionWindow() SessionWindow {
	return SessionWindow{
		StartWeekday: time.Friday,
		StartHour:    18,
		EndWeekday:   time.Saturday,
		EndHour:      2,
		Location:     time.Local,
	}
}

// IsValidSession reports whether the weekday/hour pair falls inside the window.
func (w SessionWindow) IsValidSession(weekday time.Weekday, hour int) bool {
	switch weekday {
	case w.StartWeekday:
		return hour >= w.StartHour
	case w.EndWeekday:
		return hour <= w.EndHour
	}
	return false
}

// IsValidMoment reports whether t, viewed in the window's location, is inside
// the window.
func (w SessionWindow) IsValidMoment(t time.Time) bool {
	local := t.In(w.location())
	return w.IsValidSession(local.Weekday(), local.Hour())
}

// CanonicalDate returns the session date t belongs to: midnight of the most
// recent start weekday on or before t. A date already on the start weekday is
// returned unchanged, so the function is idempotent.
func (w SessionWindow) CanonicalDate(t time.Time) time.Time {
	local := t.In(w.location())
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	for date.Weekday() != w.StartWeekday {
		date = date.AddDate(0, 0, -1)
	}
	return date
}

// StartOf returns the moment the window opened on the given session date.
// EXIT events with no prior record backfill their start to this value.
func (w SessionWindow) StartOf(date time.Time) time.Time {
	local := date.In(w.location())
	return time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, 0, 0, 0, local.Location())
}

func (w SessionWindow) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// SessionDateLayout is the storage/wire format of a session date.
const SessionDateLayout = "2006-01-02"
