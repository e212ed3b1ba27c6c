// Package handlers holds the HTTP endpoints.
//
// Handlers stay thin: parse the request, call one service method, write the
// result with pkg.JSON or pkg.Error. Authorization decisions belong to the
// services; a handler only forwards the authenticated member as the actor.
package handlers

import (
	"context"
	"net/http"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

type contextKey string

// MemberContextKey is where AuthMiddleware stores the authenticated member.
const MemberContextKey contextKey = "member"

// WithMember returns ctx carrying member.
func WithMember(ctx context.Context, member *models.Member) context.Context {
	return context.WithValue(ctx, MemberContextKey, member)
}

// MemberFromContext returns the authenticated member, if any.
func MemberFromContext(ctx context.Context) (*models.Member, bool) {
	member, ok := ctx.Value(MemberContextKey).(*models.Member)
	return member, ok && member != nil
}

// actorOrUnauthorized writes a 401 and returns false when the request has
// no authenticated member.
func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (*models.Member, bool) {
	actor, ok := MemberFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "member not found in context")
		return nil, false
	}
	return actor, true
}
