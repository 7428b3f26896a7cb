package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
	"policyrelay/internal/resilience"
)

// stageIntegrate calls the LLM with every subquestion answer and the
// original question to produce the final answer card, streaming chunks to
// the progress log as they arrive. A parse failure triggers one repair
// call; a second failure falls back to the raw prose text.
func (o *Orchestrator) stageIntegrate(ctx context.Context, tc *TurnContext) error {
	var raw strings.Builder
	err := resilience.Do(ctx, func() error {
		raw.Reset()
		_, callErr := o.LLM.Stream(ctx, ports.CompletionRequest{
			Model:        o.Model,
			SystemPrompt: integratorPrompt(),
			Messages:     []ports.Message{{Role: "user", Content: integrationContext(tc)}},
		}, func(chunk ports.StreamChunk) error {
			if chunk.Delta != "" {
				raw.WriteString(chunk.Delta)
				tc.Emitter.MessageChunk(ctx, chunk.Delta)
			}
			return nil
		})
		return callErr
	})
	if err != nil {
		tc.Status = models.StatusFailed
		tc.ErrorDiagnostic = fmt.Sprintf("integration failed: %v", err)
		tc.Emitter.Thinking(ctx, "integrate", "integration failed after retries")
		return nil
	}
	tc.ModelUsed = o.Model

	var card models.AnswerCard
	if err := json.Unmarshal([]byte(raw.String()), &card); err == nil {
		tc.Status = models.StatusCompleted
		tc.FinalMessage = raw.String()
		return nil
	}

	tc.Emitter.Thinking(ctx, "integrate", "answer card parse failed, attempting repair")
	repaired, repairErr := o.LLM.Complete(ctx, ports.CompletionRequest{
		Model:        o.Model,
		SystemPrompt: repairPrompt(),
		Messages:     []ports.Message{{Role: "user", Content: raw.String()}},
	})
	if repairErr == nil {
		if err := json.Unmarshal([]byte(repaired.Text), &card); err == nil {
			tc.Status = models.StatusCompleted
			tc.FinalMessage = repaired.Text
			return nil
		}
	}

	tc.Emitter.Thinking(ctx, "integrate", "repair failed, falling back to raw prose")
	tc.Status = models.StatusCompleted
	tc.FinalMessage = raw.String()
	return nil
}

func integrationContext(tc *TurnContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original question: %s\n\nSubquestion answers:\n", tc.Request.Message)
	for _, a := range tc.SubAnswers {
		fmt.Fprintf(&b, "- %s\n", a.Text)
	}
	return b.String()
}

func integratorPrompt() string {
	return `Produce a JSON answer card: {"mode":"FACTUAL|CANONICAL|BLENDED","direct_answer":"...","sections":[{"intent":"process|requirements|definitions|exceptions|references","label":"...","bullets":["..."]}],"required_variables":[...],"confidence_note":"...","citations":[...],"followups":[...]}. Respond with JSON only.`
}

func repairPrompt() string {
	return "The previous response was not valid JSON for the answer card schema. Re-emit it as valid JSON only, preserving its content."
}
