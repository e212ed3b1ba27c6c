// Package middleware holds the HTTP wrappers applied in front of handlers:
// bearer authentication and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/akinalp/rollcall/handlers"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/repository"
	"github.com/akinalp/rollcall/services"
)

// AuthMiddleware resolves "Authorization: Bearer <token>" to a member.
type AuthMiddleware struct {
	authService services.AuthService
	members     repository.MemberRepository
}

func NewAuthMiddleware(authService services.AuthService, members repository.MemberRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		members:     members,
	}
}

// Require rejects requests without a valid token. The member is re-read on
// every request, so a deleted member's tokens stop working at once and a
// revoked admin flag applies immediately.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		member, err := m.members.GetByID(r.Context(), claims.MemberID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "member not found")
				return
			}
			pkg.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithMember(r.Context(), member)))
	})
}
