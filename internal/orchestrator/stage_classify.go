package orchestrator

import (
	"context"
	"fmt"
)

// stageClassify decides whether this message is a slot-fill for a pending
// clarification or a new question, producing effective_message.
func (o *Orchestrator) stageClassify(ctx context.Context, tc *TurnContext) error {
	if tc.State.PendingClarification() {
		tc.IsSlotFill = true
		tc.EffectiveMessage = fmt.Sprintf("%s\n\n(clarifying detail: %s)", tc.State.RefinedQuery, tc.Request.Message)
		tc.Emitter.Thinking(ctx, "classify", "message classified as a slot-fill for a pending clarification")
		return nil
	}

	tc.IsSlotFill = false
	tc.EffectiveMessage = tc.Request.Message
	tc.Emitter.Thinking(ctx, "classify", "message classified as a new question")
	return nil
}
