package external

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

// History is the Postgres-backed Implementation B of ports.TurnHistory.
type History struct {
	pool  *pgxpool.Pool
	table string
}

// NewHistory constructs a Postgres-backed turn history.
func NewHistory(pool *pgxpool.Pool, table string) *History {
	return &History{pool: pool, table: table}
}

func (h *History) Record(ctx context.Context, rec models.TurnRecord) error {
	queries, err := json.Marshal(rec.Queries)
	if err != nil {
		return fmt.Errorf("encode queries: %w", err)
	}
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (thread_id, correlation_id, user_message, assistant_message, queries, sources, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (thread_id, correlation_id) DO NOTHING
	`, h.table)
	if _, err := h.pool.Exec(ctx, stmt, rec.ThreadID, rec.CorrelationID, rec.UserMessage, rec.AssistantMessage, queries, sources); err != nil {
		return fmt.Errorf("%w: record turn history: %v", domain.ErrFatalBackend, err)
	}
	return nil
}

func (h *History) Recent(ctx context.Context, threadID, fromCorrelationID string, limit int, backward bool) ([]models.TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	op := "<"
	order := "DESC"
	if backward {
		op = ">"
		order = "ASC"
	}

	var rows pgx.Rows
	var err error
	if fromCorrelationID == "" {
		query := fmt.Sprintf(`
			SELECT thread_id, correlation_id, user_message, assistant_message, queries, sources, completed_at
			FROM %s WHERE thread_id = $1 ORDER BY completed_at %s LIMIT $2
		`, h.table, order)
		rows, err = h.pool.Query(ctx, query, threadID, limit)
	} else {
		query := fmt.Sprintf(`
			SELECT thread_id, correlation_id, user_message, assistant_message, queries, sources, completed_at
			FROM %s
			WHERE thread_id = $1 AND completed_at %s (SELECT completed_at FROM %s WHERE correlation_id = $2)
			ORDER BY completed_at %s LIMIT $3
		`, h.table, op, h.table, order)
		rows, err = h.pool.Query(ctx, query, threadID, fromCorrelationID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query turn history: %v", domain.ErrFatalBackend, err)
	}
	defer rows.Close()

	return scanTurnRecords(rows)
}

func (h *History) MostHelpfulSearches(ctx context.Context, limit int) ([]models.SearchStat, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT q->>'text' AS query, COUNT(*) AS occurrences, AVG((q->>'confidence')::float8) AS avg_confidence
		FROM %s, jsonb_array_elements(queries) AS q
		GROUP BY q->>'text'
		ORDER BY occurrences DESC
		LIMIT $1
	`, h.table)
	rows, err := h.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query most helpful searches: %v", domain.ErrFatalBackend, err)
	}
	defer rows.Close()

	var out []models.SearchStat
	for rows.Next() {
		var s models.SearchStat
		var occurrences int64
		if err := rows.Scan(&s.Query, &occurrences, &s.AverageConfidence); err != nil {
			return nil, fmt.Errorf("scan search stat: %w", err)
		}
		s.Occurrences = int(occurrences)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (h *History) MostHelpfulDocuments(ctx context.Context, limit int) ([]models.DocumentStat, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT s->>'title' AS title, s->>'url' AS url, COUNT(*) AS occurrences, AVG((s->>'confidence')::float8) AS avg_confidence
		FROM %s, jsonb_array_elements(sources) AS s
		GROUP BY s->>'title', s->>'url'
		ORDER BY occurrences DESC
		LIMIT $1
	`, h.table)
	rows, err := h.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query most helpful documents: %v", domain.ErrFatalBackend, err)
	}
	defer rows.Close()

	var out []models.DocumentStat
	for rows.Next() {
		var d models.DocumentStat
		var occurrences int64
		if err := rows.Scan(&d.Title, &d.URL, &occurrences, &d.AverageConfidence); err != nil {
			return nil, fmt.Errorf("scan document stat: %w", err)
		}
		d.Occurrences = int(occurrences)
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanTurnRecords(rows pgx.Rows) ([]models.TurnRecord, error) {
	var out []models.TurnRecord
	for rows.Next() {
		var rec models.TurnRecord
		var queries, sources []byte
		if err := rows.Scan(&rec.ThreadID, &rec.CorrelationID, &rec.UserMessage, &rec.AssistantMessage, &queries, &sources, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan turn record: %w", err)
		}
		if err := json.Unmarshal(queries, &rec.Queries); err != nil {
			return nil, fmt.Errorf("decode queries: %w", err)
		}
		if err := json.Unmarshal(sources, &rec.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
