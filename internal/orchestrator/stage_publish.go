package orchestrator

import (
	"context"
	"fmt"
	"time"

	"policyrelay/internal/domain/models"
)

// stagePublish writes the Response, appends the turn's terminal
// ProgressEvent, and persists ThreadState with open_slots and
// last_blueprint cleared. Publish failures (Store/Queue unreachable) are
// fatal: they propagate rather than downgrade silently.
//
// The terminal event kind mirrors the Response status: completed turns
// close the stream with a completed event, failed turns with an error
// event, so a live-stream client and a poll client agree on outcome
// without inspecting the Response body.
func (o *Orchestrator) stagePublish(ctx context.Context, tc *TurnContext) error {
	tc.ThinkingLog = tc.Emitter.Lines()

	resp := models.Response{
		CorrelationID:         tc.Request.CorrelationID,
		ThreadID:              tc.Request.ThreadID,
		Status:                tc.Status,
		Message:               tc.FinalMessage,
		Sources:               tc.Sources,
		ThinkingLog:           tc.ThinkingLog,
		ModelUsed:             tc.ModelUsed,
		Error:                 tc.ErrorDiagnostic,
	}
	if err := o.Responses.Put(ctx, resp); err != nil {
		return fmt.Errorf("publish response: %w", err)
	}

	eventKind := models.EventCompleted
	terminalPayload := tc.FinalMessage
	if tc.Status == models.StatusFailed {
		eventKind = models.EventError
		terminalPayload = tc.ErrorDiagnostic
	}
	if err := tc.Emitter.Terminal(ctx, eventKind, terminalPayload); err != nil {
		return fmt.Errorf("append terminal event: %w", err)
	}

	assistantEntry := models.TranscriptEntry{Role: models.RoleAssistant, Content: tc.FinalMessage}
	err := o.persistState(ctx, tc.State, func(s models.ThreadState) models.Delta {
		return models.Delta{
			ActiveJurisdiction: s.ActiveJurisdiction,
			OpenSlots:          nil,
			RefinedQuery:       "",
			LastBlueprint:      nil,
			AppendTranscript:   []models.TranscriptEntry{pendingTranscriptEntry(tc.Request.Message), assistantEntry},
		}
	})
	if err != nil {
		return fmt.Errorf("persist thread state after publish: %w", err)
	}

	o.recordHistory(ctx, tc)

	return nil
}

// recordHistory appends a read-model projection of a completed turn.
// Best-effort: a history store failure is logged and never fails the turn,
// since history is a convenience projection, not the Response of record.
func (o *Orchestrator) recordHistory(ctx context.Context, tc *TurnContext) {
	if o.History == nil || tc.Status != models.StatusCompleted {
		return
	}

	queries := make([]models.SearchQuery, 0, len(tc.Blueprint.Subquestions))
	for i, sq := range tc.Blueprint.Subquestions {
		confidence := 0.0
		if i < len(tc.SubAnswers) {
			for _, src := range tc.SubAnswers[i].Sources {
				if src.Confidence > confidence {
					confidence = src.Confidence
				}
			}
		}
		queries = append(queries, models.SearchQuery{Text: sq.Text, Confidence: confidence})
	}

	rec := models.TurnRecord{
		ThreadID:         tc.Request.ThreadID,
		CorrelationID:    tc.Request.CorrelationID,
		UserMessage:      tc.Request.Message,
		AssistantMessage: tc.FinalMessage,
		Queries:          queries,
		Sources:          tc.Sources,
		CompletedAt:      time.Now().UTC(),
	}
	if err := o.History.Record(ctx, rec); err != nil {
		o.Logger.Error("failed to record turn history", "correlation_id", tc.Request.CorrelationID, "error", err)
	}
}
