// Package services holds the business logic: attendance reconciliation, the
// event adapter, projections, member administration and reports.
//
// Each service is an interface plus an unexported implementation built by a
// New* constructor that receives every dependency explicitly. Handlers, the
// websocket layer and the CLI depend on the interfaces only.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/repository"
)

// AuthService issues and checks API tokens and the relay gateway key.
type AuthService interface {
	// IssueToken mints a bearer token for a registered member.
	IssueToken(ctx context.Context, discordName string) (string, *models.Member, error)
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	// VerifyGatewayKey reports whether key matches the configured hash.
	// It is always false when no hash is configured.
	VerifyGatewayKey(key string) bool
}

type authService struct {
	members        repository.MemberRepository
	jwtSecret      []byte
	tokenExpiry    time.Duration
	gatewayKeyHash []byte
	now            func() time.Time
}

const tokenIssuer = "rollcall"

// NewAuthService builds the AuthService. gatewayKeyHash may be empty, which
// disables the relay gateway.
func NewAuthService(
	members repository.MemberRepository,
	jwtSecret string,
	tokenExpiry time.Duration,
	gatewayKeyHash string,
) AuthService {
	return &authService{
		members:        members,
		jwtSecret:      []byte(jwtSecret),
		tokenExpiry:    tokenExpiry,
		gatewayKeyHash: []byte(gatewayKeyHash),
		now:            time.Now,
	}
}

func (s *authService) IssueToken(ctx context.Context, discordName string) (string, *models.Member, error) {
	member, err := s.members.GetByDiscordName(ctx, strings.TrimSpace(discordName))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: no member with discord name %q", pkg.ErrNotFound, discordName)
		}
		return "", nil, err
	}

	now := s.now()
	claims := &models.TokenClaims{
		MemberID:    member.ID,
		DiscordName: member.DiscordName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, member, nil
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	return claims, nil
}

func (s *authService) VerifyGatewayKey(key string) bool {
	if len(s.gatewayKeyHash) == 0 || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.gatewayKeyHash, []byte(key)) == nil
}

// HashGatewayKey produces the value for GATEWAY_KEY_HASH.
func HashGatewayKey(key string) (string, error) {
	if len(key) < 16 {
		return "", fmt.Errorf("%w: gateway key must be at least 16 characters", pkg.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		return "", fmt.Errorf("failed to hash gateway key: %w", err)
	}
	return string(hash), nil
}
