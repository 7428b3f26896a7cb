package orchestrator

import (
	"policyrelay/internal/domain/models"
	"policyrelay/internal/orchestrator/agents"
)

// errHalt is returned by a stage that has already published a terminal
// Response and wants the pipeline to stop without running later stages.
// It is not a failure: Run treats it as a clean, successful stop.
type errHalt struct{}

func (errHalt) Error() string { return "pipeline halted: turn already published" }

// TurnContext carries everything one turn's stages read and mutate. It is
// not safe for concurrent use; each turn gets its own instance and stages
// run sequentially.
type TurnContext struct {
	Request models.Request

	// State is the thread state as loaded at stage 1, used as the base for
	// the delta computed once the turn resolves.
	State models.ThreadState

	EffectiveMessage string
	Blueprint        models.Blueprint
	IsSlotFill       bool

	SubAnswers []agents.SubAnswer

	// Publish fields, populated by Integrate and written by Publish.
	Status               models.ResponseStatus
	FinalMessage         string
	Sources              []models.SourceRef
	ThinkingLog          []string
	ModelUsed            string
	ErrorDiagnostic      string
	OpenSlots            []string
	ClarificationOptions []models.ClarificationOption

	Emitter *Emitter
}
