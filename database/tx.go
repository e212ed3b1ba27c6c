// WithTx runs several statements as one all-or-nothing unit. Without it each
// statement autocommits, and a failure halfway through an attendance update
// could leave a session with no join record pointing at it.
//
//	err := database.WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
//	    if _, err := tx.ExecContext(ctx, "INSERT ...", ...); err != nil {
//	        return err // rollback
//	    }
//	    return nil // commit
//	})
//
// Repositories accept TxQuerier, which both *sql.DB and *sql.Tx satisfy, so
// the same repository code runs inside and outside a transaction.

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier is the subset of *sql.DB and *sql.Tx that repositories need.
// database/sql does not define it, so we do.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction.
//
// fn returns nil → COMMIT. fn returns an error → ROLLBACK. fn panics →
// ROLLBACK, then the panic is re-raised so the transaction never stays open
// holding the SQLite write lock.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
