package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

type sqliteSessionGameRepo struct {
	db database.TxQuerier
}

// NewSQLiteSessionGameRepo returns the SQLite SessionGameRepository.
func NewSQLiteSessionGameRepo(db database.TxQuerier) SessionGameRepository {
	return &sqliteSessionGameRepo{db: db}
}

const sessionGameSelect = `SELECT id, session_id, game_id, start, "end" FROM session_games`

func (r *sqliteSessionGameRepo) Find(ctx context.Context, sessionID, gameID string) (*models.SessionGame, error) {
	row := r.db.QueryRowContext(ctx, sessionGameSelect+` WHERE session_id = ? AND game_id = ?`, sessionID, gameID)
	record, err := scanSessionGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session game: %w", err)
	}
	return record, nil
}

func (r *sqliteSessionGameRepo) Create(ctx context.Context, record *models.SessionGame) error {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_games (id, session_id, game_id, start, "end")
		VALUES (?, ?, ?, ?, ?)`,
		id, record.SessionID, record.GameID, formatTimePtr(record.Start), formatTimePtr(record.End),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game already recorded in session", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create session game: %w", err)
	}
	record.ID = id
	return nil
}

func (r *sqliteSessionGameRepo) UpdateBounds(ctx context.Context, id string, bounds models.Bounds) error {
	result, err := r.db.ExecContext(ctx, `UPDATE session_games SET start = ?, "end" = ? WHERE id = ?`,
		formatTimePtr(bounds.Start), formatTimePtr(bounds.End), id)
	if err != nil {
		return fmt.Errorf("failed to update session game bounds: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteSessionGameRepo) GetByID(ctx context.Context, id string) (*models.SessionGame, error) {
	record, err := scanSessionGame(r.db.QueryRowContext(ctx, sessionGameSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session game: %w", err)
	}
	return record, nil
}

func (r *sqliteSessionGameRepo) List(ctx context.Context) ([]models.SessionGame, error) {
	return r.list(ctx, sessionGameSelect+` ORDER BY session_id, start`)
}

func (r *sqliteSessionGameRepo) ListBySession(ctx context.Context, sessionID string) ([]models.SessionGame, error) {
	return r.list(ctx, sessionGameSelect+` WHERE session_id = ? ORDER BY start`, sessionID)
}

func (r *sqliteSessionGameRepo) ListByGame(ctx context.Context, gameID string) ([]models.SessionGame, error) {
	return r.list(ctx, sessionGameSelect+` WHERE game_id = ? ORDER BY start`, gameID)
}

func (r *sqliteSessionGameRepo) list(ctx context.Context, query string, args ...any) ([]models.SessionGame, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list session games: %w", err)
	}
	defer rows.Close()

	records := []models.SessionGame{}
	for rows.Next() {
		record, err := scanSessionGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session game row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session game rows: %w", err)
	}
	return records, nil
}

func scanSessionGame(s rowScanner) (*models.SessionGame, error) {
	var (
		record     models.SessionGame
		start, end sql.NullString
	)
	if err := s.Scan(&record.ID, &record.SessionID, &record.GameID, &start, &end); err != nil {
		return nil, err
	}
	bounds, err := scanBounds(start, end)
	if err != nil {
		return nil, err
	}
	record.Bounds = bounds
	return &record, nil
}
