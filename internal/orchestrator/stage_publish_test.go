package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/orchestrator/agents"
	"policyrelay/internal/transport/memory"
)

func testOrchestrator() (*Orchestrator, *memory.History) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	history := memory.NewHistory()
	return &Orchestrator{
		Logger:       logger,
		ThreadStates: memory.NewThreadStateStore(),
		Responses:    memory.NewResponseStore(0),
		Progress:     memory.NewProgressLog(),
		History:      history,
	}, history
}

func TestStagePublish_RecordsHistoryForCompletedTurn(t *testing.T) {
	o, history := testOrchestrator()
	ctx := context.Background()

	tc := &TurnContext{
		Request: models.Request{ThreadID: "t1", CorrelationID: "c1", Message: "what is my deductible"},
		State:   models.NewThreadState("t1"),
		Blueprint: models.Blueprint{
			Subquestions: []models.Subquestion{{ID: "s1", Text: "deductible amount", Path: models.PathRAG}},
		},
		SubAnswers: []agents.SubAnswer{
			{SubquestionID: "s1", Text: "your deductible is $500", Sources: []models.SourceRef{{Title: "Policy", URL: "p.example", Confidence: 0.8}}},
		},
		Status:       models.StatusCompleted,
		FinalMessage: "your deductible is $500",
		Sources:      []models.SourceRef{{Title: "Policy", URL: "p.example", Confidence: 0.8}},
		Emitter:      NewEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)), o.Progress, "c1"),
	}

	require.NoError(t, o.stagePublish(ctx, tc))

	recs, err := history.Recent(ctx, "t1", "", 10, false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c1", recs[0].CorrelationID)
	assert.Equal(t, "your deductible is $500", recs[0].AssistantMessage)
	require.Len(t, recs[0].Queries, 1)
	assert.Equal(t, "deductible amount", recs[0].Queries[0].Text)
	assert.InDelta(t, 0.8, recs[0].Queries[0].Confidence, 1e-9)
}

func TestStagePublish_SkipsHistoryForFailedTurn(t *testing.T) {
	o, history := testOrchestrator()
	ctx := context.Background()

	tc := &TurnContext{
		Request:         models.Request{ThreadID: "t1", CorrelationID: "c1", Message: "hello"},
		State:           models.NewThreadState("t1"),
		Status:          models.StatusFailed,
		ErrorDiagnostic: "boom",
		Emitter:         NewEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)), o.Progress, "c1"),
	}

	require.NoError(t, o.stagePublish(ctx, tc))

	recs, err := history.Recent(ctx, "t1", "", 10, false)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStagePublish_NilHistoryIsSafe(t *testing.T) {
	o, _ := testOrchestrator()
	o.History = nil
	ctx := context.Background()

	tc := &TurnContext{
		Request:      models.Request{ThreadID: "t1", CorrelationID: "c1", Message: "hello"},
		State:        models.NewThreadState("t1"),
		Status:       models.StatusCompleted,
		FinalMessage: "hi there",
		Emitter:      NewEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)), o.Progress, "c1"),
	}

	assert.NoError(t, o.stagePublish(ctx, tc))
}
