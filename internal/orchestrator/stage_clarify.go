package orchestrator

import (
	"context"
	"fmt"

	"policyrelay/internal/domain/models"
)

// stageClarify halts the pipeline here when the Blueprint still needs
// information the user hasn't given: it publishes a clarification Response
// and a terminal ProgressEvent, persists ThreadState with the pending
// blueprint and open slots, and returns errHalt so later stages don't run.
func (o *Orchestrator) stageClarify(ctx context.Context, tc *TurnContext) error {
	if !tc.Blueprint.NeedsClarification() {
		return nil
	}

	tc.Emitter.Thinking(ctx, "clarify", fmt.Sprintf("needs clarification: %v", tc.Blueprint.RequiredClarifications))

	options := make([]models.ClarificationOption, 0, len(tc.Blueprint.RequiredClarifications))
	for _, slot := range tc.Blueprint.RequiredClarifications {
		options = append(options, models.ClarificationOption{Slot: slot, Label: fmt.Sprintf("Please specify %s", slot)})
	}

	blueprint := tc.Blueprint
	err := o.persistState(ctx, tc.State, func(s models.ThreadState) models.Delta {
		return models.Delta{
			ActiveJurisdiction: s.ActiveJurisdiction,
			OpenSlots:          blueprint.RequiredClarifications,
			RefinedQuery:       tc.EffectiveMessage,
			LastBlueprint:      &blueprint,
			AppendTranscript:   []models.TranscriptEntry{pendingTranscriptEntry(tc.Request.Message)},
		}
	})
	if err != nil {
		return fmt.Errorf("persist clarification thread state: %w", err)
	}

	resp := models.Response{
		CorrelationID:        tc.Request.CorrelationID,
		ThreadID:             tc.Request.ThreadID,
		Status:               models.StatusClarification,
		Message:              "I need a bit more information before I can answer.",
		OpenSlots:            tc.Blueprint.RequiredClarifications,
		ClarificationOptions: options,
	}
	if err := o.Responses.Put(ctx, resp); err != nil {
		return fmt.Errorf("publish clarification response: %w", err)
	}
	if err := tc.Emitter.Terminal(ctx, models.EventCompleted, resp.Message); err != nil {
		return fmt.Errorf("append clarification terminal event: %w", err)
	}

	return errHalt{}
}
