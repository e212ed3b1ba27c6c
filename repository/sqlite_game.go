package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

type sqliteGameRepo struct {
	db database.TxQuerier
}

// NewSQLiteGameRepo returns the SQLite GameRepository.
func NewSQLiteGameRepo(db database.TxQuerier) GameRepository {
	return &sqliteGameRepo{db: db}
}

func (r *sqliteGameRepo) GetOrCreate(ctx context.Context, name string) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty game name", pkg.ErrMalformedInput)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO games (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		uuid.New().String(), name, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return r.GetByName(ctx, name)
}

func (r *sqliteGameRepo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM games WHERE id = ?`, id)
}

func (r *sqliteGameRepo) GetByName(ctx context.Context, name string) (*models.Game, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM games WHERE name = ?`, strings.TrimSpace(name))
}

func (r *sqliteGameRepo) getOne(ctx context.Context, query string, arg string) (*models.Game, error) {
	game, err := scanGame(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (r *sqliteGameRepo) List(ctx context.Context) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM games ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

func scanGame(s rowScanner) (*models.Game, error) {
	var (
		game      models.Game
		createdAt string
	)
	if err := s.Scan(&game.ID, &game.Name, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	game.CreatedAt = t
	return &game, nil
}
