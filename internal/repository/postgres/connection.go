package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TableNames holds the environment-prefixed relational table names used by
// Implementation B of the Transport & Store substrate.
type TableNames struct {
	ProgressEvents string
	ThreadStates   string
	Turns          string
}

// NewTableNames builds environment-namespaced table names (dev_/test_/prod_)
// so the same database can safely host multiple environments.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		ProgressEvents: fmt.Sprintf("%sprogress_events", prefix),
		ThreadStates:   fmt.Sprintf("%sthread_states", prefix),
		Turns:          fmt.Sprintf("%sturns", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool with automatic PgBouncer
// compatibility.
//
// PgBouncer in transaction pooling mode (commonly port 6543) does not
// support prepared statements, causing "prepared statement already exists"
// errors under pgx's default QueryExecModeCacheStatement. When port 6543 is
// detected and the caller has not explicitly overridden the exec mode via
// the connection string's default_query_exec_mode parameter, this switches
// to QueryExecModeCacheDescribe, which still uses the extended protocol
// (needed for correct JSONB encoding) but does not leave prepared statements
// open on the pooled connection. Direct connections (port 5432) keep pgx's
// default prepared-statement caching.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
