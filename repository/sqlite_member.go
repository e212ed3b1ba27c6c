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

type sqliteMemberRepo struct {
	db database.TxQuerier
}

// NewSQLiteMemberRepo returns the SQLite MemberRepository.
func NewSQLiteMemberRepo(db database.TxQuerier) MemberRepository {
	return &sqliteMemberRepo{db: db}
}

const memberColumns = `id, discord_name, name, is_admin, in_rotation, created_at`

func (r *sqliteMemberRepo) Create(ctx context.Context, member *models.Member) error {
	id := uuid.New().String()
	createdAt := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, discord_name, name, is_admin, in_rotation, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, member.DiscordName, member.Name, member.IsAdmin, member.InRotation, formatTime(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: discord name %q already registered", pkg.ErrAlreadyExists, member.DiscordName)
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	member.ID = id
	member.CreatedAt = createdAt
	return nil
}

func (r *sqliteMemberRepo) GetByID(ctx context.Context, id string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by id: %w", err)
	}
	return member, nil
}

func (r *sqliteMemberRepo) GetByDiscordName(ctx context.Context, discordName string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE discord_name = ?`, discordName)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by discord name: %w", err)
	}
	return member, nil
}

func (r *sqliteMemberRepo) List(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY name, discord_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member rows: %w", err)
	}
	return members, nil
}

func (r *sqliteMemberRepo) UpdateRotation(ctx context.Context, id string, inRotation bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE members SET in_rotation = ? WHERE id = ?`, inRotation, id)
	if err != nil {
		return fmt.Errorf("failed to update member rotation: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteMemberRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireAffected(result)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (*models.Member, error) {
	var (
		m         models.Member
		createdAt string
	)
	if err := s.Scan(&m.ID, &m.DiscordName, &m.Name, &m.IsAdmin, &m.InRotation, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = t
	return &m, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
