package external

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
)

// ProgressLog is the Postgres-backed distributed implementation of
// ports.ProgressLog. Live reads are implemented by tight-interval polling
// of the append-only table; no LISTEN/NOTIFY subscription channel is
// required.
type ProgressLog struct {
	pool         *pgxpool.Pool
	table        string
	pollInterval time.Duration
}

// NewProgressLog constructs a Postgres-backed ProgressLog polling at
// pollInterval (a few tens of milliseconds is appropriate for a live feed).
func NewProgressLog(pool *pgxpool.Pool, table string, pollInterval time.Duration) *ProgressLog {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &ProgressLog{pool: pool, table: table, pollInterval: pollInterval}
}

func (l *ProgressLog) Append(ctx context.Context, correlationID string, event models.ProgressEvent) (uint64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (correlation_id, seq, kind, payload, created_at)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, now()
		FROM %s WHERE correlation_id = $1
		RETURNING seq
	`, l.table, l.table)

	var seq uint64
	err := l.pool.QueryRow(ctx, query, correlationID, string(event.Kind), event.Payload).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("%w: append progress event: %v", domain.ErrFatalBackend, err)
	}
	return seq, nil
}

func (l *ProgressLog) ReadSnapshot(ctx context.Context, correlationID string) ([]models.ProgressEvent, error) {
	return l.queryFrom(ctx, correlationID, 0)
}

func (l *ProgressLog) queryFrom(ctx context.Context, correlationID string, afterSeq uint64) ([]models.ProgressEvent, error) {
	query := fmt.Sprintf(`
		SELECT seq, kind, payload, created_at FROM %s
		WHERE correlation_id = $1 AND seq > $2
		ORDER BY seq ASC
	`, l.table)

	rows, err := l.pool.Query(ctx, query, correlationID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("%w: read progress events: %v", domain.ErrFatalBackend, err)
	}
	defer rows.Close()

	var out []models.ProgressEvent
	for rows.Next() {
		var e models.ProgressEvent
		var kind string
		if err := rows.Scan(&e.Seq, &kind, &e.Payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan progress event: %v", domain.ErrFatalBackend, err)
		}
		e.CorrelationID = correlationID
		e.Kind = models.ProgressEventKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFatalBackend, err)
	}
	return out, nil
}

func (l *ProgressLog) ReadFrom(ctx context.Context, correlationID string, afterSeq uint64) (ports.ProgressReader, error) {
	return &pollingReader{log: l, correlationID: correlationID, cursor: afterSeq}, nil
}

// pollingReader polls queryFrom on pollInterval, yielding buffered events
// one at a time and stopping once a terminal event has been observed.
type pollingReader struct {
	log           *ProgressLog
	correlationID string
	cursor        uint64
	pending       []models.ProgressEvent
	done          bool
	closed        bool
}

func (r *pollingReader) Next(ctx context.Context) (models.ProgressEvent, bool, error) {
	if r.closed || r.done {
		return models.ProgressEvent{}, false, nil
	}

	for {
		if len(r.pending) > 0 {
			e := r.pending[0]
			r.pending = r.pending[1:]
			r.cursor = e.Seq
			if e.Kind.Terminal() {
				r.done = true
			}
			return e, true, nil
		}

		batch, err := r.log.queryFrom(ctx, r.correlationID, r.cursor)
		if err != nil {
			return models.ProgressEvent{}, false, err
		}
		if len(batch) > 0 {
			r.pending = batch
			continue
		}

		timer := time.NewTimer(r.log.pollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return models.ProgressEvent{}, false, ctx.Err()
		}
	}
}

func (r *pollingReader) Close() {
	r.closed = true
}
