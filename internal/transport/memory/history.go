package memory

import (
	"context"
	"sort"
	"sync"

	"policyrelay/internal/domain/models"
)

// History is the in-process Implementation A of ports.TurnHistory. Records
// are kept per thread_id, in append order, and never expire: unlike
// ResponseStore there is no TTL sweep, since history is meant to outlive a
// single turn's poll window.
type History struct {
	mu       sync.Mutex
	byThread map[string][]models.TurnRecord
}

// NewHistory constructs an empty in-process turn history.
func NewHistory() *History {
	return &History{byThread: make(map[string][]models.TurnRecord)}
}

func (h *History) Record(ctx context.Context, rec models.TurnRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byThread[rec.ThreadID] = append(h.byThread[rec.ThreadID], rec)
	return nil
}

// Recent returns turns most-recent-first. backward is accepted for
// interface symmetry with the external store, where a cursor can be
// walked in either direction; the in-process store only ever has one
// natural order (insertion order), so backward is a no-op here.
func (h *History) Recent(ctx context.Context, threadID, fromCorrelationID string, limit int, backward bool) ([]models.TurnRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	all := h.byThread[threadID]
	ordered := make([]models.TurnRecord, len(all))
	for i, rec := range all {
		ordered[len(all)-1-i] = rec
	}

	start := 0
	if fromCorrelationID != "" {
		for i, rec := range ordered {
			if rec.CorrelationID == fromCorrelationID {
				start = i + 1
				break
			}
		}
	}

	end := len(ordered)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	if start > end {
		start = end
	}
	out := make([]models.TurnRecord, end-start)
	copy(out, ordered[start:end])
	return out, nil
}

type searchAggregate struct {
	count         int
	confidenceSum float64
}

func (h *History) MostHelpfulSearches(ctx context.Context, limit int) ([]models.SearchStat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byQuery := make(map[string]*searchAggregate)
	for _, recs := range h.byThread {
		for _, rec := range recs {
			for _, q := range rec.Queries {
				a, ok := byQuery[q.Text]
				if !ok {
					a = &searchAggregate{}
					byQuery[q.Text] = a
				}
				a.count++
				a.confidenceSum += q.Confidence
			}
		}
	}

	stats := make([]models.SearchStat, 0, len(byQuery))
	for query, a := range byQuery {
		stats = append(stats, models.SearchStat{
			Query:             query,
			Occurrences:       a.count,
			AverageConfidence: a.confidenceSum / float64(a.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Occurrences > stats[j].Occurrences })
	return truncateSearchStats(stats, limit), nil
}

type documentAggregate struct {
	title         string
	url           string
	count         int
	confidenceSum float64
}

func (h *History) MostHelpfulDocuments(ctx context.Context, limit int) ([]models.DocumentStat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byKey := make(map[string]*documentAggregate)
	for _, recs := range h.byThread {
		for _, rec := range recs {
			for _, src := range rec.Sources {
				key := src.URL
				if key == "" {
					key = src.Title
				}
				a, ok := byKey[key]
				if !ok {
					a = &documentAggregate{title: src.Title, url: src.URL}
					byKey[key] = a
				}
				a.count++
				a.confidenceSum += src.Confidence
			}
		}
	}

	stats := make([]models.DocumentStat, 0, len(byKey))
	for _, a := range byKey {
		stats = append(stats, models.DocumentStat{
			Title:             a.title,
			URL:               a.url,
			Occurrences:       a.count,
			AverageConfidence: a.confidenceSum / float64(a.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Occurrences > stats[j].Occurrences })
	return truncateDocumentStats(stats, limit), nil
}

func truncateSearchStats(stats []models.SearchStat, limit int) []models.SearchStat {
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

func truncateDocumentStats(stats []models.DocumentStat, limit int) []models.DocumentStat {
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}
