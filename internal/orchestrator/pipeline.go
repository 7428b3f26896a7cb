package orchestrator

import (
	"context"
	"errors"
)

// Stage is one step of the turn pipeline. A stage mutates tc in place and
// returns an error to abort. Returning errHalt stops the pipeline cleanly
// (used by Clarify-or-refine once it has already published a terminal
// Response).
type Stage func(ctx context.Context, tc *TurnContext) error

// Pipeline is an ordered sequence of stages run against one TurnContext.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds the fixed seven-stage turn pipeline.
func NewPipeline(o *Orchestrator) *Pipeline {
	return &Pipeline{stages: []Stage{
		o.stageLoad,
		o.stageClassify,
		o.stagePlan,
		o.stageClarify,
		o.stageResolve,
		o.stageIntegrate,
		o.stagePublish,
	}}
}

// Run executes every stage in order, stopping on the first error. errHalt
// is treated as a clean stop, not a failure.
func (p *Pipeline) Run(ctx context.Context, tc *TurnContext) error {
	for _, stage := range p.stages {
		if err := stage(ctx, tc); err != nil {
			if errors.Is(err, errHalt{}) {
				return nil
			}
			return err
		}
	}
	return nil
}
