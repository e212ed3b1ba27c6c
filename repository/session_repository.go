package repository

import (
	"context"

	"github.com/akinalp/rollcall/models"
)

// SessionRepository stores weekly sessions, one per window-start date.
type SessionRepository interface {
	// GetOrCreate returns the session for date (models.SessionDateLayout),
	// creating it on first use. Concurrent callers converge on one row.
	GetOrCreate(ctx context.Context, date string) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByDate(ctx context.Context, date string) (*models.Session, error)
	// List returns sessions newest first.
	List(ctx context.Context) ([]models.Session, error)
}

// GameRepository stores the games members have been seen playing.
type GameRepository interface {
	GetOrCreate(ctx context.Context, name string) (*models.Game, error)
	GetByID(ctx context.Context, id string) (*models.Game, error)
	GetByName(ctx context.Context, name string) (*models.Game, error)
	List(ctx context.Context) ([]models.Game, error)
}
