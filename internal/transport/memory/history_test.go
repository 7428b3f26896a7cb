package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain/models"
)

func TestHistory_RecentOrdersMostRecentFirst(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, models.TurnRecord{ThreadID: "t1", CorrelationID: "c1", UserMessage: "first"}))
	require.NoError(t, h.Record(ctx, models.TurnRecord{ThreadID: "t1", CorrelationID: "c2", UserMessage: "second"}))

	recs, err := h.Recent(ctx, "t1", "", 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c2", recs[0].CorrelationID)
	assert.Equal(t, "c1", recs[1].CorrelationID)
}

func TestHistory_RecentPaginatesAfterCursor(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, h.Record(ctx, models.TurnRecord{ThreadID: "t1", CorrelationID: id}))
	}

	recs, err := h.Recent(ctx, "t1", "c3", 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c2", recs[0].CorrelationID)
	assert.Equal(t, "c1", recs[1].CorrelationID)
}

func TestHistory_RecentIsScopedByThread(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, models.TurnRecord{ThreadID: "t1", CorrelationID: "c1"}))
	require.NoError(t, h.Record(ctx, models.TurnRecord{ThreadID: "t2", CorrelationID: "c2"}))

	recs, err := h.Recent(ctx, "t1", "", 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c1", recs[0].CorrelationID)
}

func TestHistory_MostHelpfulSearchesAggregatesAcrossThreads(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, models.TurnRecord{
		ThreadID: "t1", CorrelationID: "c1",
		Queries: []models.SearchQuery{{Text: "deductible", Confidence: 0.8}},
	}))
	require.NoError(t, h.Record(ctx, models.TurnRecord{
		ThreadID: "t2", CorrelationID: "c2",
		Queries: []models.SearchQuery{{Text: "deductible", Confidence: 0.6}},
	}))

	stats, err := h.MostHelpfulSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "deductible", stats[0].Query)
	assert.Equal(t, 2, stats[0].Occurrences)
	assert.InDelta(t, 0.7, stats[0].AverageConfidence, 1e-9)
}

func TestHistory_MostHelpfulDocumentsRanksByOccurrence(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, models.TurnRecord{
		ThreadID: "t1", CorrelationID: "c1",
		Sources: []models.SourceRef{{Title: "Policy A", URL: "a.example", Confidence: 0.9}},
	}))
	require.NoError(t, h.Record(ctx, models.TurnRecord{
		ThreadID: "t1", CorrelationID: "c2",
		Sources: []models.SourceRef{
			{Title: "Policy A", URL: "a.example", Confidence: 0.7},
			{Title: "Policy B", URL: "b.example", Confidence: 0.5},
		},
	}))

	stats, err := h.MostHelpfulDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "a.example", stats[0].URL)
	assert.Equal(t, 2, stats[0].Occurrences)
	assert.Equal(t, "b.example", stats[1].URL)
	assert.Equal(t, 1, stats[1].Occurrences)
}

func TestHistory_MostHelpfulDocumentsRespectsLimit(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	for _, url := range []string{"a.example", "b.example", "c.example"} {
		require.NoError(t, h.Record(ctx, models.TurnRecord{
			ThreadID: "t1", CorrelationID: url,
			Sources: []models.SourceRef{{Title: url, URL: url, Confidence: 0.5}},
		}))
	}

	stats, err := h.MostHelpfulDocuments(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}
