package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T, migrations fstest.MapFS) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"), migrations, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestEmbeddedMigrationsApply(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "rollcall.db"), Migrations(), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"members", "sessions", "games", "session_members", "session_games", "member_games"} {
		n := countRows(t, db.Conn, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='"+table+"'")
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestMigrationsRecordedOnce(t *testing.T) {
	dir := t.TempDir()
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	}

	first, err := New(filepath.Join(dir, "db.sqlite"), migrations, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(filepath.Join(dir, "db.sqlite"), migrations, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 1, countRows(t, second.Conn, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("CREAT TABLE things(id INT);")},
	}

	_, err := New(filepath.Join(t.TempDir(), "db.sqlite"), bad, zap.NewNop())
	require.Error(t, err)
}

func TestRecoverableStatementSkipped(t *testing.T) {
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte(
			"CREATE TABLE items(id TEXT PRIMARY KEY, note TEXT);\n" +
				"ALTER TABLE items ADD COLUMN note TEXT;\n" +
				"INSERT INTO items (id, note) VALUES ('a', 'semi;colon');",
		)},
	}

	db := openTestDB(t, migrations)
	assert.Equal(t, 1, countRows(t, db.Conn, "SELECT COUNT(*) FROM items"))
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("INSERT INTO t VALUES ('a;b'); INSERT INTO t VALUES ('it''s');\nSELECT 1")
	assert.Equal(t, []string{
		"INSERT INTO t VALUES ('a;b')",
		"INSERT INTO t VALUES ('it''s')",
		"SELECT 1",
	}, got)
}

func TestSplitStatementsIgnoresComments(t *testing.T) {
	got := splitStatements("-- members are added by an admin; never by events\n" +
		"CREATE TABLE x (id TEXT); /* one; two */ CREATE TABLE \"y;z\" (id TEXT);\n" +
		"-- trailing; comment")
	assert.Equal(t, []string{
		"CREATE TABLE x (id TEXT)",
		"CREATE TABLE \"y;z\" (id TEXT)",
	}, got)

	assert.Equal(t, []string{"SELECT '--not a comment'"}, splitStatements("SELECT '--not a comment';"))
}

func TestCommentedMigrationApplies(t *testing.T) {
	db := openTestDB(t, fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte(
			"-- items are created once; see below\n" +
				"CREATE TABLE items(id TEXT PRIMARY KEY);\n" +
				"INSERT INTO items (id) VALUES ('a'); -- seeded; not user data\n",
		)},
	})
	assert.Equal(t, 1, countRows(t, db.Conn, "SELECT COUNT(*) FROM items"))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t, fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	})
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (id) VALUES ('a')"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countRows(t, db.Conn, "SELECT COUNT(*) FROM items"))

	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO items (id) VALUES ('b')")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db.Conn, "SELECT COUNT(*) FROM items"))
}
