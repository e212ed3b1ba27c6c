package repository

import (
	"context"

	"github.com/akinalp/rollcall/models"
)

// SessionMemberRepository stores member attendance bounds per session.
type SessionMemberRepository interface {
	// Find returns the record for the pair or pkg.ErrNotFound.
	Find(ctx context.Context, sessionID, memberID string) (*models.SessionMember, error)
	// Create assigns ID. A second record for the same pair returns
	// pkg.ErrAlreadyExists.
	Create(ctx context.Context, record *models.SessionMember) error
	UpdateBounds(ctx context.Context, id string, bounds models.Bounds) error
	GetByID(ctx context.Context, id string) (*models.SessionMember, error)
	List(ctx context.Context) ([]models.SessionMember, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionMember, error)
	ListByMember(ctx context.Context, memberID string) ([]models.SessionMember, error)
}

// SessionGameRepository stores when each game was played per session.
type SessionGameRepository interface {
	Find(ctx context.Context, sessionID, gameID string) (*models.SessionGame, error)
	Create(ctx context.Context, record *models.SessionGame) error
	UpdateBounds(ctx context.Context, id string, bounds models.Bounds) error
	GetByID(ctx context.Context, id string) (*models.SessionGame, error)
	List(ctx context.Context) ([]models.SessionGame, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionGame, error)
	ListByGame(ctx context.Context, gameID string) ([]models.SessionGame, error)
}

// MemberGameRepository stores the permanent "member has played game" links.
type MemberGameRepository interface {
	Find(ctx context.Context, memberID, gameID string) (*models.MemberGame, error)
	// CreateIfAbsent returns the link for the pair and whether this call
	// created it.
	CreateIfAbsent(ctx context.Context, memberID, gameID string) (*models.MemberGame, bool, error)
	GetByID(ctx context.Context, id string) (*models.MemberGame, error)
	List(ctx context.Context) ([]models.MemberGame, error)
	ListByMember(ctx context.Context, memberID string) ([]models.MemberGame, error)
	ListByGame(ctx context.Context, gameID string) ([]models.MemberGame, error)
}
