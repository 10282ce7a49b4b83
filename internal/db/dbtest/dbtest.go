// Package dbtest provides a migrated, rolled-back Postgres transaction for repository tests.
// Tests using it are skipped when DATABASE_URL is unset or the database is unreachable.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"

	"program-access/internal/db"
	"program-access/internal/db/migrate"
)

// Tx returns a transaction on a migrated database. It is rolled back when the test ends.
func Tx(t *testing.T) pgx.Tx {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, dsn, 2)
	if err != nil {
		t.Skipf("Database connection failed (expected in test environment): %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Run(dsn, "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// Exec runs a fixture statement and fails the test on error.
func Exec(t *testing.T, tx pgx.Tx, sql string, args ...any) {
	t.Helper()
	if _, err := tx.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("fixture %q: %v", sql, err)
	}
}
