package orchestrator

import (
	"context"
	"log/slog"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
)

// stageVisibility is the static table deciding which stages' thinking lines
// reach the user-facing ProgressLog. Every stage is logged technically
// regardless of this table.
var stageVisibility = map[string]bool{
	"load":      false,
	"classify":  false,
	"plan":      true,
	"clarify":   true,
	"resolve":   true,
	"integrate": true,
	"publish":   false,
}

// Emitter fans a stage's event out to two sinks: a technical slog.Logger
// (always) and the correlation's user-facing ProgressLog (when the
// originating stage is marked visible). Emission is best-effort except for
// the terminal completed/error event, whose failure the caller must treat
// as fatal to the turn.
type Emitter struct {
	logger        *slog.Logger
	log           ports.ProgressLog
	correlationID string
	lines         []string
}

// NewEmitter builds an emitter scoped to one correlation_id.
func NewEmitter(logger *slog.Logger, log ports.ProgressLog, correlationID string) *Emitter {
	return &Emitter{logger: logger, log: log, correlationID: correlationID}
}

// Thinking emits a kind=thinking line from stage, records it for the
// turn's Response.thinking_log, and (if stage is visible) relays it to the
// user-facing ProgressLog. Best-effort: a failed append is logged but does
// not abort the stage.
func (e *Emitter) Thinking(ctx context.Context, stage, line string) {
	e.logger.Info("stage thinking", "stage", stage, "correlation_id", e.correlationID, "line", line)
	e.lines = append(e.lines, line)

	if !stageVisibility[stage] {
		return
	}
	if _, err := e.log.Append(ctx, e.correlationID, models.ProgressEvent{
		Kind:    models.EventThinking,
		Payload: line,
	}); err != nil {
		e.logger.Warn("failed to append thinking event", "stage", stage, "correlation_id", e.correlationID, "error", err)
	}
}

// Lines returns every thinking line recorded so far, for inclusion in the
// turn's Response.thinking_log.
func (e *Emitter) Lines() []string {
	return e.lines
}

// MessageChunk relays one streamed piece of the final answer. Best-effort.
func (e *Emitter) MessageChunk(ctx context.Context, delta string) {
	if _, err := e.log.Append(ctx, e.correlationID, models.ProgressEvent{
		Kind:    models.EventMessageChunk,
		Payload: delta,
	}); err != nil {
		e.logger.Warn("failed to append message_chunk event", "correlation_id", e.correlationID, "error", err)
	}
}

// Terminal emits the turn's closing event (completed or error). Unlike
// Thinking/MessageChunk this is not best-effort: the caller must treat a
// non-nil return as a fatal turn error.
func (e *Emitter) Terminal(ctx context.Context, kind models.ProgressEventKind, payload string) error {
	_, err := e.log.Append(ctx, e.correlationID, models.ProgressEvent{Kind: kind, Payload: payload})
	return err
}
