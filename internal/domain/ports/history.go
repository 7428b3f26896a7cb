package ports

import (
	"context"

	"policyrelay/internal/domain/models"
)

// TurnHistory is the read-only projection over completed turns backing the
// history endpoints. Writes happen once, at publish time, alongside the
// turn's Response; pending and failed turns never appear here.
type TurnHistory interface {
	// Record appends a completed turn. Best-effort from the caller's
	// perspective: a failure here must never fail the turn that produced it.
	Record(ctx context.Context, rec models.TurnRecord) error

	// Recent returns up to limit turns for threadID, most recent first.
	// fromCorrelationID, if non-empty, is a pagination cursor: results
	// start strictly after (older than) that turn. If backward is true an
	// implementation may instead return the turns newer than the cursor,
	// oldest first; the in-process implementation ignores backward.
	Recent(ctx context.Context, threadID, fromCorrelationID string, limit int, backward bool) ([]models.TurnRecord, error)

	// MostHelpfulSearches ranks distinct subquestion queries across every
	// recorded turn by occurrence count, most frequent first.
	MostHelpfulSearches(ctx context.Context, limit int) ([]models.SearchStat, error)

	// MostHelpfulDocuments ranks distinct cited sources across every
	// recorded turn by occurrence count, most frequent first.
	MostHelpfulDocuments(ctx context.Context, limit int) ([]models.DocumentStat, error)
}
