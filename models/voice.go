// These are what a chat platform reports: "this user's voice channel went
// from X to Y" and "this user's activity went from A to B". An empty string
// means "none". They carry no business meaning until the adapter turns them
// into boundary events.

package models

import "time"

// VoiceStateChange is a voice channel transition for one platform user.
type VoiceStateChange struct {
	Handle          string    `json:"user"`
	BeforeChannelID string    `json:"before_channel_id"`
	AfterChannelID  string    `json:"after_channel_id"`
	At              time.Time `json:"timestamp"`
}

// ActivityChange is an activity (game) transition for one platform user.
type ActivityChange struct {
	Handle         string    `json:"user"`
	BeforeActivity string    `json:"before_activity"`
	AfterActivity  string    `json:"after_activity"`
	At             time.Time `json:"timestamp"`
}
