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

type sqliteMemberGameRepo struct {
	db database.TxQuerier
}

// NewSQLiteMemberGameRepo returns the SQLite MemberGameRepository.
func NewSQLiteMemberGameRepo(db database.TxQuerier) MemberGameRepository {
	return &sqliteMemberGameRepo{db: db}
}

const memberGameSelect = `SELECT id, member_id, game_id, created_at FROM member_games`

func (r *sqliteMemberGameRepo) Find(ctx context.Context, memberID, gameID string) (*models.MemberGame, error) {
	link, err := scanMemberGame(r.db.QueryRowContext(ctx, memberGameSelect+` WHERE member_id = ? AND game_id = ?`, memberID, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member game: %w", err)
	}
	return link, nil
}

func (r *sqliteMemberGameRepo) CreateIfAbsent(ctx context.Context, memberID, gameID string) (*models.MemberGame, bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO member_games (id, member_id, game_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id, game_id) DO NOTHING`,
		uuid.New().String(), memberID, gameID, formatTime(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create member game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	link, err := r.Find(ctx, memberID, gameID)
	if err != nil {
		return nil, false, err
	}
	return link, affected > 0, nil
}

func (r *sqliteMemberGameRepo) GetByID(ctx context.Context, id string) (*models.MemberGame, error) {
	link, err := scanMemberGame(r.db.QueryRowContext(ctx, memberGameSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member game: %w", err)
	}
	return link, nil
}

func (r *sqliteMemberGameRepo) List(ctx context.Context) ([]models.MemberGame, error) {
	return r.list(ctx, memberGameSelect+` ORDER BY created_at`)
}

func (r *sqliteMemberGameRepo) ListByMember(ctx context.Context, memberID string) ([]models.MemberGame, error) {
	return r.list(ctx, memberGameSelect+` WHERE member_id = ? ORDER BY created_at`, memberID)
}

func (r *sqliteMemberGameRepo) ListByGame(ctx context.Context, gameID string) ([]models.MemberGame, error) {
	return r.list(ctx, memberGameSelect+` WHERE game_id = ? ORDER BY created_at`, gameID)
}

func (r *sqliteMemberGameRepo) list(ctx context.Context, query string, args ...any) ([]models.MemberGame, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list member games: %w", err)
	}
	defer rows.Close()

	links := []models.MemberGame{}
	for rows.Next() {
		link, err := scanMemberGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member game row: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member game rows: %w", err)
	}
	return links, nil
}

func scanMemberGame(s rowScanner) (*models.MemberGame, error) {
	var (
		link      models.MemberGame
		createdAt string
	)
	if err := s.Scan(&link.ID, &link.MemberID, &link.GameID, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	link.CreatedAt = t
	return &link, nil
}
