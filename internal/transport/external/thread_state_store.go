package external

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/repository/postgres"
)

// ThreadStateStore is the Postgres-backed Implementation B of
// ports.ThreadStateStore. CompareAndSwap runs inside a transaction so the
// version check and the write are atomic across concurrent writers hitting
// different orchestrator processes.
type ThreadStateStore struct {
	pool  *pgxpool.Pool
	table string
	tx    *postgres.TransactionManager
}

// NewThreadStateStore constructs a Postgres-backed ThreadStateStore.
func NewThreadStateStore(pool *pgxpool.Pool, table string) *ThreadStateStore {
	return &ThreadStateStore{pool: pool, table: table, tx: postgres.NewTransactionManager(pool)}
}

func (s *ThreadStateStore) Load(ctx context.Context, threadID string) (models.ThreadState, error) {
	query := fmt.Sprintf(`SELECT version, state FROM %s WHERE thread_id = $1`, s.table)

	var version int64
	var raw []byte
	err := s.pool.QueryRow(ctx, query, threadID).Scan(&version, &raw)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return models.NewThreadState(threadID), nil
		}
		return models.ThreadState{}, fmt.Errorf("%w: load thread state: %v", domain.ErrFatalBackend, err)
	}

	var st models.ThreadState
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.ThreadState{}, fmt.Errorf("decode thread state: %w", err)
	}
	st.ThreadID = threadID
	st.Version = version
	return st, nil
}

func (s *ThreadStateStore) CompareAndSwap(ctx context.Context, next models.ThreadState, expectedVersion int64) (models.ThreadState, error) {
	var result models.ThreadState

	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		tx, _ := postgres.TxFromContext(ctx)

		var currentVersion int64
		err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT version FROM %s WHERE thread_id = $1 FOR UPDATE`, s.table), next.ThreadID).Scan(&currentVersion)
		if err != nil && !postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("%w: lock thread state: %v", domain.ErrFatalBackend, err)
		}
		if postgres.IsPgNoRowsError(err) {
			currentVersion = 0
		}
		if currentVersion != expectedVersion {
			return domain.ErrConflict
		}

		newVersion := currentVersion + 1
		next.Version = newVersion
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode thread state: %w", err)
		}

		upsert := fmt.Sprintf(`
			INSERT INTO %s (thread_id, version, state, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (thread_id) DO UPDATE SET version = $2, state = $3, updated_at = now()
		`, s.table)
		if _, err := tx.Exec(ctx, upsert, next.ThreadID, newVersion, payload); err != nil {
			if postgres.IsPgDuplicateError(err) {
				// A concurrent first-ever insert for this thread_id raced us
				// past the FOR UPDATE read above; treat it the same as a
				// stale-version conflict so the caller reloads and retries.
				return domain.ErrConflict
			}
			return fmt.Errorf("%w: write thread state: %v", domain.ErrFatalBackend, err)
		}

		result = next
		return nil
	})
	if err != nil {
		return models.ThreadState{}, err
	}
	return result, nil
}
