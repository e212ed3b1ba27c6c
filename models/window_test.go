package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() SessionWindow {
	return SessionWindow{
		StartWeekday: time.Friday,
		StartHour:    18,
		EndWeekday:   time.Saturday,
		EndHour:      2,
		Location:     time.UTC,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCanonicalDateWalksBackToFriday(t *testing.T) {
	w := testWindow()

	// 2025-10-24 is a Friday.
	cases := []struct {
		input    time.Time
		expected time.Time
	}{
		{day(2025, 10, 24), day(2025, 10, 24)},
		{day(2025, 10, 25), day(2025, 10, 24)},
		{day(2025, 10, 26), day(2025, 10, 24)},
		{day(2025, 10, 27), day(2025, 10, 24)},
		{day(2025, 10, 28), day(2025, 10, 24)},
		{day(2025, 10, 29), day(2025, 10, 24)},
		{day(2025, 10, 30), day(2025, 10, 24)},
		{day(2025, 10, 31), day(2025, 10, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.input.Format(SessionDateLayout), func(t *testing.T) {
			got := w.CanonicalDate(tc.input)
			assert.True(t, tc.expected.Equal(got), "want %s, got %s", tc.expected, got)
		})
	}
}

func TestCanonicalDateProperties(t *testing.T) {
	w := testWindow()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 400; i++ {
		ts := start.Add(time.Duration(i) * 7 * time.Hour)
		canonical := w.CanonicalDate(ts)

		require.Equal(t, time.Friday, canonical.Weekday())
		require.True(t, canonical.Equal(w.CanonicalDate(canonical)), "not idempotent for %s", ts)
		require.False(t, canonical.After(ts))
		require.LessOrEqual(t, ts.Sub(canonical), 7*24*time.Hour-time.Nanosecond,
			"stepped back more than 6 days for %s", ts)

		if ts.Weekday() == time.Friday {
			midnight := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			require.True(t, midnight.Equal(canonical))
		}
	}
}

func TestIsValidSession(t *testing.T) {
	w := testWindow()

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for hour := 0; hour < 24; hour++ {
			var want bool
			switch wd {
			case time.Friday:
				want = hour >= 18
			case time.Saturday:
				want = hour <= 2
			}
			assert.Equal(t, want, w.IsValidSession(wd, hour), "%s %02d:00", wd, hour)
		}
	}
}

func TestWindowExamples(t *testing.T) {
	w := testWindow()

	sunday := time.Date(2025, 10, 26, 10, 0, 0, 0, time.UTC)
	assert.False(t, w.IsValidMoment(sunday))

	friday := time.Date(2025, 10, 24, 19, 0, 0, 0, time.UTC)
	require.True(t, w.IsValidMoment(friday))
	assert.True(t, day(2025, 10, 24).Equal(w.CanonicalDate(friday)))

	saturday := time.Date(2025, 10, 25, 1, 0, 0, 0, time.UTC)
	require.True(t, w.IsValidMoment(saturday))
	assert.True(t, day(2025, 10, 24).Equal(w.CanonicalDate(saturday)))
}

func TestIsValidMomentUsesWindowLocation(t *testing.T) {
	w := testWindow()
	w.Location = time.FixedZone("UTC+3", 3*60*60)

	// 16:00 UTC on a Friday is 19:00 in UTC+3.
	ts := time.Date(2025, 10, 24, 16, 0, 0, 0, time.UTC)
	assert.True(t, w.IsValidMoment(ts))
	assert.False(t, testWindow().IsValidMoment(ts))
}

func TestStartOf(t *testing.T) {
	w := testWindow()
	got := w.StartOf(day(2025, 10, 24))
	assert.True(t, time.Date(2025, 10, 24, 18, 0, 0, 0, time.UTC).Equal(got))
}
