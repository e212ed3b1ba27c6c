package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/rollcall/models"
)

// timeLayout is fixed width and always UTC, so stored timestamps sort
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// legacyTimeLayout is what SQLite's CURRENT_TIMESTAMP produces.
const legacyTimeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTime accepts both our own layout and SQLite's default. The driver may
// already have converted a DATETIME column to time.Time, in which case
// database/sql hands it to us as RFC 3339.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanBounds converts the nullable start/end columns into models.Bounds.
func scanBounds(start, end sql.NullString) (models.Bounds, error) {
	s, err := parseNullTime(start)
	if err != nil {
		return models.Bounds{}, err
	}
	e, err := parseNullTime(end)
	if err != nil {
		return models.Bounds{}, err
	}
	return models.Bounds{Start: s, End: e}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
