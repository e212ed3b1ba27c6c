// Package models holds the domain structs shared by every layer.
//
// Member is a tracked participant, identified on the chat platform by
// DiscordName. Members are only ever created through the administrative
// path; the attendance engine never creates one on its own, so events for
// unregistered platform users are simply ignored.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Member is a registered participant of the weekly sessions.
type Member struct {
	ID          string    `json:"id"`
	DiscordName string    `json:"discord_name"`
	Name        string    `json:"name"`
	IsAdmin     bool      `json:"is_admin"`
	InRotation  bool      `json:"in_rotation"`
	CreatedAt   time.Time `json:"created_at"`
}

// SystemActor is the identity used by local CLI commands, which already have
// direct database access and therefore full administrative capability.
func SystemActor() *Member {
	return &Member{ID: "system", DiscordName: "system", Name: "system", IsAdmin: true}
}

// RegisterMemberRequest is the body of POST /api/members and one entry of a
// roster import.
type RegisterMemberRequest struct {
	Name        string `json:"name" yaml:"name"`
	DiscordName string `json:"discord_name" yaml:"discord_name"`
	IsAdmin     bool   `json:"is_admin" yaml:"is_admin"`
}

// Validate trims and checks the request in place.
func (r *RegisterMemberRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.DiscordName = strings.TrimSpace(r.DiscordName)

	if r.DiscordName == "" {
		return fmt.Errorf("discord_name is required")
	}
	if utf8.RuneCountInString(r.DiscordName) > 32 {
		return fmt.Errorf("discord_name must be at most 32 characters")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(r.Name) > 32 {
		return fmt.Errorf("name must be at most 32 characters")
	}
	return nil
}

// UpdateMemberRequest is a partial update; nil fields are left alone.
type UpdateMemberRequest struct {
	InRotation *bool `json:"in_rotation"`
}

// Validate rejects an update that changes nothing.
func (r *UpdateMemberRequest) Validate() error {
	if r.InRotation == nil {
		return fmt.Errorf("no fields to update")
	}
	return nil
}
