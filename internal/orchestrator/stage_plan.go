package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
	"policyrelay/internal/resilience"
)

// planResponse is the wire shape the decomposition prompt asks the LLM to
// return; it maps directly onto models.Blueprint.
type planResponse struct {
	Subquestions []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		Path string `json:"path"`
	} `json:"subquestions"`
	RequiredClarifications []string `json:"required_clarifications"`
}

// stagePlan builds a fresh Blueprint for a new question, or resumes and
// re-evaluates the persisted last_blueprint for a slot-fill.
func (o *Orchestrator) stagePlan(ctx context.Context, tc *TurnContext) error {
	if tc.IsSlotFill {
		if tc.State.LastBlueprint == nil {
			return fmt.Errorf("slot-fill classified with no persisted blueprint")
		}
		tc.Blueprint = tc.State.LastBlueprint.Clone()
		tc.Blueprint.RequiredClarifications = dropFirstSlot(tc.Blueprint.RequiredClarifications)
		tc.Emitter.Thinking(ctx, "plan", "resumed persisted blueprint for slot-fill")
		return nil
	}

	var parsed planResponse
	err := resilience.Do(ctx, func() error {
		resp, callErr := o.LLM.Complete(ctx, ports.CompletionRequest{
			Model:        o.Model,
			SystemPrompt: decompositionPrompt(o.Capabilities.Describe()),
			Messages:     []ports.Message{{Role: "user", Content: tc.EffectiveMessage}},
		})
		if callErr != nil {
			return callErr
		}
		return json.Unmarshal([]byte(resp.Text), &parsed)
	})
	if err != nil {
		return fmt.Errorf("plan stage failed: %w", err)
	}

	blueprint := models.Blueprint{RequiredClarifications: parsed.RequiredClarifications}
	for _, sq := range parsed.Subquestions {
		path, _ := o.Capabilities.Resolve(models.Path(sq.Path))
		blueprint.Subquestions = append(blueprint.Subquestions, models.Subquestion{ID: sq.ID, Text: sq.Text, Path: path})
	}
	tc.Blueprint = blueprint
	tc.Emitter.Thinking(ctx, "plan", fmt.Sprintf("Plan ready: %d subquestions", len(blueprint.Subquestions)))
	return nil
}

func decompositionPrompt(registryDescription string) string {
	return "Decompose the user's question into subquestions, each routed to one of these paths:\n" +
		registryDescription +
		"\nRespond with JSON: {\"subquestions\":[{\"id\":..,\"text\":..,\"path\":..}],\"required_clarifications\":[...]}."
}

// dropFirstSlot resolves the oldest pending clarification, reflecting that
// this turn's message answered it. Remaining slots (if any) still require
// clarification on a subsequent turn.
func dropFirstSlot(required []string) []string {
	if len(required) == 0 {
		return nil
	}
	return required[1:]
}
