package orchestrator

import (
	"context"
	"fmt"

	"policyrelay/internal/domain/models"
)

// stageLoad reads ThreadState for the request's thread_id (or the default
// state for a thread that has not had a turn yet). It does not touch the
// transcript: the user entry is appended, and persisted, by Clarify or
// Publish when the turn ends.
func (o *Orchestrator) stageLoad(ctx context.Context, tc *TurnContext) error {
	state, err := o.ThreadStates.Load(ctx, tc.Request.ThreadID)
	if err != nil {
		return fmt.Errorf("load thread state: %w", err)
	}
	tc.State = state
	tc.Emitter.Thinking(ctx, "load", "loaded thread state")
	return nil
}

// pendingTranscriptEntry builds the user-turn entry appended at Clarify or
// Publish.
func pendingTranscriptEntry(message string) models.TranscriptEntry {
	return models.TranscriptEntry{Role: models.RoleUser, Content: message}
}
