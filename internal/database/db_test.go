package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open(SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":           MySQL,
		"mysql":      MySQL,
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM tips WHERE visibility = ? AND outcome = ? LIMIT ?"
	pg := &DB{Dialect: Postgres}
	require.Equal(t, "SELECT id FROM tips WHERE visibility = $1 AND outcome = $2 LIMIT $3", pg.Rebind(q))
	my := &DB{Dialect: MySQL}
	require.Equal(t, q, my.Rebind(q))
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, IsUniqueViolation(errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'uq_users_email'")))
	require.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)))
	require.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	require.False(t, IsUniqueViolation(errors.New("connection refused")))
	require.False(t, IsUniqueViolation(nil))
}

func TestTimeScan(t *testing.T) {
	want := time.Date(2024, 3, 9, 20, 45, 0, 0, time.UTC)

	var a Time
	require.NoError(t, a.Scan(FormatTime(want)))
	require.True(t, want.Equal(a.T))

	var b Time
	require.NoError(t, b.Scan([]byte("2024-03-09 20:45:00")))
	require.True(t, want.Equal(b.T))

	var c Time
	require.NoError(t, c.Scan(want.In(time.FixedZone("CET", 3600))))
	require.True(t, want.Equal(c.T))
	require.Equal(t, time.UTC, c.T.Location())

	var d Time
	require.Error(t, d.Scan("yesterday"))
	require.Error(t, d.Scan(42))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tips").Scan(&n))
	require.Zero(t, n)
}
