package repository

import (
	"context"
	"database/sql"

	"github.com/akinalp/rollcall/database"
)

// Store bundles the repositories over one connection or one transaction.
//
// It is built once from the database in main and handed to services by
// constructor. Nothing else holds a connection.
type Store struct {
	Members        MemberRepository
	Sessions       SessionRepository
	Games          GameRepository
	SessionMembers SessionMemberRepository
	SessionGames   SessionGameRepository
	MemberGames    MemberGameRepository

	conn *sql.DB // nil when the store is bound to a transaction
}

// NewStore returns a Store whose repositories use the connection pool.
func NewStore(db *database.DB) *Store {
	s := newStore(db.Conn)
	s.conn = db.Conn
	return s
}

func newStore(q database.TxQuerier) *Store {
	return &Store{
		Members:        NewSQLiteMemberRepo(q),
		Sessions:       NewSQLiteSessionRepo(q),
		Games:          NewSQLiteGameRepo(q),
		SessionMembers: NewSQLiteSessionMemberRepo(q),
		SessionGames:   NewSQLiteSessionGameRepo(q),
		MemberGames:    NewSQLiteMemberGameRepo(q),
	}
}

// InTx runs fn with a Store bound to a single transaction. fn's error rolls
// the whole unit back. Calling InTx on a transaction-bound store runs fn in
// the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.conn == nil {
		return fn(s)
	}
	return database.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		return fn(newStore(tx))
	})
}
