package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

type sqliteSessionRepo struct {
	db database.TxQuerier
}

// NewSQLiteSessionRepo returns the SQLite SessionRepository.
func NewSQLiteSessionRepo(db database.TxQuerier) SessionRepository {
	return &sqliteSessionRepo{db: db}
}

// GetOrCreate relies on the UNIQUE(date) constraint: the insert is a no-op
// when the row exists and the follow-up select returns whichever row won.
func (r *sqliteSessionRepo) GetOrCreate(ctx context.Context, date string) (*models.Session, error) {
	if _, err := time.Parse(models.SessionDateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: session date %q", pkg.ErrMalformedInput, date)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, date, created_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO NOTHING`,
		uuid.New().String(), date, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return r.GetByDate(ctx, date)
}

func (r *sqliteSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return r.getOne(ctx, `SELECT id, date, created_at FROM sessions WHERE id = ?`, id)
}

func (r *sqliteSessionRepo) GetByDate(ctx context.Context, date string) (*models.Session, error) {
	return r.getOne(ctx, `SELECT id, date, created_at FROM sessions WHERE date = ?`, date)
}

func (r *sqliteSessionRepo) getOne(ctx context.Context, query string, arg string) (*models.Session, error) {
	session, err := scanSession(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *sqliteSessionRepo) List(ctx context.Context) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, created_at FROM sessions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return sessions, nil
}

func scanSession(s rowScanner) (*models.Session, error) {
	var (
		session   models.Session
		createdAt string
	)
	if err := s.Scan(&session.ID, &session.Date, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	session.CreatedAt = t
	return &session, nil
}
