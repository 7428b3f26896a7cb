// Package agents implements the per-path answer generators dispatched by
// the Resolve stage.
package agents

import (
	"context"

	"policyrelay/internal/domain/models"
)

// SubAnswer is one subquestion's resolved contribution, carried forward
// into the Integrate stage.
type SubAnswer struct {
	SubquestionID string
	Text          string
	Sources       []models.SourceRef
	ThinkingNotes []string
}

// Agent resolves one subquestion routed to its declared path.
type Agent interface {
	Resolve(ctx context.Context, sq models.Subquestion) (SubAnswer, error)
}
