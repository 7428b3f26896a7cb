package orchestrator

import (
	"context"
	"fmt"
)

// stageResolve routes each subquestion in the Blueprint to its matching
// agent and collects a per-subquestion answer, strictly sequentially: the
// Retriever and LLM ports are assumed to be rate-limited by their own
// implementations, and parallelizing resolution is left as a future
// optimization, not a contract this pipeline relies on.
func (o *Orchestrator) stageResolve(ctx context.Context, tc *TurnContext) error {
	for _, sq := range tc.Blueprint.Subquestions {
		agent, ok := o.Agents.Get(sq.Path)
		if !ok {
			return fmt.Errorf("no agent registered for path %q", sq.Path)
		}

		answer, err := agent.Resolve(ctx, sq)
		if err != nil {
			return fmt.Errorf("resolve subquestion %q: %w", sq.ID, err)
		}

		for _, note := range answer.ThinkingNotes {
			tc.Emitter.Thinking(ctx, "resolve", note)
		}
		tc.Emitter.Thinking(ctx, "resolve", fmt.Sprintf("resolved subquestion %q via %s", sq.ID, sq.Path))

		tc.SubAnswers = append(tc.SubAnswers, answer)
		tc.Sources = append(tc.Sources, answer.Sources...)
	}
	return nil
}
