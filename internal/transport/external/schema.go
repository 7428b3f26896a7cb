// Package external implements the distributed Transport & Store substrate:
// a Redis-backed RequestQueue and ResponseStore, and a Postgres-backed
// ProgressLog and ThreadStateStore. No schema-migration tooling is wired;
// schema setup is inline idempotent DDL run at startup.
package external

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"policyrelay/internal/repository/postgres"
)

// EnsureSchema creates the tables Implementation B needs if they do not
// already exist. Safe to call on every process start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			correlation_id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (correlation_id, seq)
		)`, tables.ProgressEvents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			thread_id TEXT PRIMARY KEY,
			version BIGINT NOT NULL,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tables.ThreadStates),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			thread_id TEXT NOT NULL,
			correlation_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			assistant_message TEXT NOT NULL,
			queries JSONB NOT NULL DEFAULT '[]',
			sources JSONB NOT NULL DEFAULT '[]',
			completed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (thread_id, correlation_id)
		)`, tables.Turns),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_completed_at_idx ON %s (thread_id, completed_at DESC)`, tables.Turns, tables.Turns),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
