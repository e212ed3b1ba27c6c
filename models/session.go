package models

import "time"

// Session is one weekly gathering, keyed by the calendar date its window
// opened on. Sessions are created lazily by the first event that maps to
// their date.
type Session struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // SessionDateLayout
	CreatedAt time.Time `json:"created_at"`
}

// Game is a named activity members were seen playing.
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
