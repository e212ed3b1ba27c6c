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

type sqliteSessionMemberRepo struct {
	db database.TxQuerier
}

// NewSQLiteSessionMemberRepo returns the SQLite SessionMemberRepository.
func NewSQLiteSessionMemberRepo(db database.TxQuerier) SessionMemberRepository {
	return &sqliteSessionMemberRepo{db: db}
}

const sessionMemberSelect = `SELECT id, session_id, member_id, start, "end" FROM session_members`

func (r *sqliteSessionMemberRepo) Find(ctx context.Context, sessionID, memberID string) (*models.SessionMember, error) {
	row := r.db.QueryRowContext(ctx, sessionMemberSelect+` WHERE session_id = ? AND member_id = ?`, sessionID, memberID)
	record, err := scanSessionMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session member: %w", err)
	}
	return record, nil
}

func (r *sqliteSessionMemberRepo) Create(ctx context.Context, record *models.SessionMember) error {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_members (id, session_id, member_id, start, "end")
		VALUES (?, ?, ?, ?, ?)`,
		id, record.SessionID, record.MemberID, formatTimePtr(record.Start), formatTimePtr(record.End),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: member already recorded in session", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create session member: %w", err)
	}
	record.ID = id
	return nil
}

func (r *sqliteSessionMemberRepo) UpdateBounds(ctx context.Context, id string, bounds models.Bounds) error {
	result, err := r.db.ExecContext(ctx, `UPDATE session_members SET start = ?, "end" = ? WHERE id = ?`,
		formatTimePtr(bounds.Start), formatTimePtr(bounds.End), id)
	if err != nil {
		return fmt.Errorf("failed to update session member bounds: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteSessionMemberRepo) GetByID(ctx context.Context, id string) (*models.SessionMember, error) {
	record, err := scanSessionMember(r.db.QueryRowContext(ctx, sessionMemberSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session member: %w", err)
	}
	return record, nil
}

func (r *sqliteSessionMemberRepo) List(ctx context.Context) ([]models.SessionMember, error) {
	return r.list(ctx, sessionMemberSelect+` ORDER BY session_id, start`)
}

func (r *sqliteSessionMemberRepo) ListBySession(ctx context.Context, sessionID string) ([]models.SessionMember, error) {
	return r.list(ctx, sessionMemberSelect+` WHERE session_id = ? ORDER BY start`, sessionID)
}

func (r *sqliteSessionMemberRepo) ListByMember(ctx context.Context, memberID string) ([]models.SessionMember, error) {
	return r.list(ctx, sessionMemberSelect+` WHERE member_id = ? ORDER BY start`, memberID)
}

func (r *sqliteSessionMemberRepo) list(ctx context.Context, query string, args ...any) ([]models.SessionMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list session members: %w", err)
	}
	defer rows.Close()

	records := []models.SessionMember{}
	for rows.Next() {
		record, err := scanSessionMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session member row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session member rows: %w", err)
	}
	return records, nil
}

func scanSessionMember(s rowScanner) (*models.SessionMember, error) {
	var (
		record     models.SessionMember
		start, end sql.NullString
	)
	if err := s.Scan(&record.ID, &record.SessionID, &record.MemberID, &start, &end); err != nil {
		return nil, err
	}
	bounds, err := scanBounds(start, end)
	if err != nil {
		return nil, err
	}
	record.Bounds = bounds
	return &record, nil
}
