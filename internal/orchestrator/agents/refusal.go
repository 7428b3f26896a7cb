package agents

import (
	"context"

	"policyrelay/internal/domain/models"
)

// Refusal is a fixed-response agent for paths reserved for future work.
// patient, clinical, and tool all resolve to one of these, differing only
// in message.
type Refusal struct {
	Message string
}

// NewPatientAgent refuses patient-record lookups.
func NewPatientAgent() *Refusal {
	return &Refusal{Message: "I cannot access patient records."}
}

// NewClinicalAgent refuses clinical-reasoning subquestions (reserved).
func NewClinicalAgent() *Refusal {
	return &Refusal{Message: "Clinical reasoning is not available yet."}
}

// NewToolAgent refuses explicit tool-invocation subquestions (reserved).
func NewToolAgent() *Refusal {
	return &Refusal{Message: "Tool invocation is not available yet."}
}

var _ Agent = (*Refusal)(nil)

func (r *Refusal) Resolve(ctx context.Context, sq models.Subquestion) (SubAnswer, error) {
	return SubAnswer{SubquestionID: sq.ID, Text: r.Message}, nil
}
