package services

import (
	"fmt"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

// RequireAdmin is the capability check every mutating administrative
// operation runs first. A nil actor is an unauthenticated call.
func RequireAdmin(actor *models.Member) error {
	if actor == nil {
		return fmt.Errorf("%w: no authenticated member", pkg.ErrUnauthorized)
	}
	if !actor.IsAdmin {
		return fmt.Errorf("%w: %s is not an administrator", pkg.ErrForbidden, actor.DiscordName)
	}
	return nil
}

// ConflictError is returned when registering a handle that is already
// taken. It matches pkg.ErrAlreadyExists under errors.Is and carries the
// existing member so callers can show who holds the handle. As a
// pkg.PayloadError the member also reaches the HTTP response body.
type ConflictError struct {
	Existing *models.Member
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: discord name %q belongs to member %s", pkg.ErrAlreadyExists, e.Existing.DiscordName, e.Existing.ID)
}

func (e *ConflictError) Unwrap() error {
	return pkg.ErrAlreadyExists
}

// Payload puts the existing member in the body of the 409 response.
func (e *ConflictError) Payload() any {
	return e.Existing
}
