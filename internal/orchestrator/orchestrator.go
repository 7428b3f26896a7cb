// Package orchestrator implements the single-turn pipeline: load state,
// classify, plan, clarify-or-refine, resolve, integrate, publish. It hosts
// the agent-routing sub-engine and is the Consume-side handler wired to a
// ports.RequestQueue.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"policyrelay/internal/capabilities"
	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
	"policyrelay/internal/orchestrator/agents"
)

// Orchestrator holds every dependency a turn's stages need and exposes
// HandleRequest as a ports.RequestHandler.
type Orchestrator struct {
	Logger       *slog.Logger
	ThreadStates ports.ThreadStateStore
	Responses    ports.ResponseStore
	Progress     ports.ProgressLog
	LLM          ports.LLM
	Model        string
	Capabilities *capabilities.Registry
	Agents       *agents.Registry
	TurnTimeout  time.Duration
	Locks        ThreadLocker
	History      ports.TurnHistory

	pipeline *Pipeline
}

// New wires an Orchestrator and its fixed pipeline. history may be nil, in
// which case completed turns are not recorded anywhere beyond Responses.
func New(
	logger *slog.Logger,
	threadStates ports.ThreadStateStore,
	responses ports.ResponseStore,
	progress ports.ProgressLog,
	llm ports.LLM,
	model string,
	caps *capabilities.Registry,
	agentRegistry *agents.Registry,
	turnTimeout time.Duration,
	locks ThreadLocker,
	history ports.TurnHistory,
) *Orchestrator {
	o := &Orchestrator{
		Logger:       logger,
		ThreadStates: threadStates,
		Responses:    responses,
		Progress:     progress,
		LLM:          llm,
		Model:        model,
		Capabilities: caps,
		Agents:       agentRegistry,
		TurnTimeout:  turnTimeout,
		Locks:        locks,
		History:      history,
	}
	o.pipeline = NewPipeline(o)
	return o
}

// HandleRequest is the ports.RequestHandler delivered to RequestQueue.Consume.
// It owns the thread-level lock for the turn's duration, enforcing the
// serialize-or-reject concurrency policy, and runs the fixed pipeline under
// a turn-level timeout.
func (o *Orchestrator) HandleRequest(ctx context.Context, req models.Request) error {
	if !o.Locks.TryLock(req.ThreadID) {
		o.Logger.Warn("thread busy, rejecting turn", "thread_id", req.ThreadID, "correlation_id", req.CorrelationID)
		return o.publishBusy(ctx, req)
	}
	defer o.Locks.Unlock(req.ThreadID)

	turnCtx, cancel := context.WithTimeout(ctx, o.TurnTimeout)
	defer cancel()

	tc := &TurnContext{
		Request: req,
		Emitter: NewEmitter(o.Logger, o.Progress, req.CorrelationID),
	}

	err := o.pipeline.Run(turnCtx, tc)
	if err == nil {
		return nil
	}

	if turnCtx.Err() != nil {
		o.Logger.Error("turn timed out", "correlation_id", req.CorrelationID, "thread_id", req.ThreadID)
		return o.publishFailure(ctx, req, domain.ErrTurnTimeout, "the turn took too long to complete")
	}

	o.Logger.Error("turn failed", "correlation_id", req.CorrelationID, "thread_id", req.ThreadID, "error", err)
	return o.publishFailure(ctx, req, err, err.Error())
}

func (o *Orchestrator) publishBusy(ctx context.Context, req models.Request) error {
	resp := models.Response{
		CorrelationID: req.CorrelationID,
		ThreadID:      req.ThreadID,
		Status:        models.StatusFailed,
		Error:         domain.ErrThreadBusy.Error(),
	}
	if err := o.Responses.Put(ctx, resp); err != nil {
		return fmt.Errorf("publish busy response: %w", err)
	}
	emitter := NewEmitter(o.Logger, o.Progress, req.CorrelationID)
	return emitter.Terminal(ctx, models.EventError, domain.ErrThreadBusy.Error())
}

func (o *Orchestrator) publishFailure(ctx context.Context, req models.Request, cause error, diagnostic string) error {
	resp := models.Response{
		CorrelationID: req.CorrelationID,
		ThreadID:      req.ThreadID,
		Status:        models.StatusFailed,
		Error:         diagnostic,
	}
	if err := o.Responses.Put(ctx, resp); err != nil {
		o.Logger.Error("failed to persist failure response", "correlation_id", req.CorrelationID, "error", err)
		return fmt.Errorf("store failure response after %v: %w", cause, err)
	}
	emitter := NewEmitter(o.Logger, o.Progress, req.CorrelationID)
	if err := emitter.Terminal(ctx, models.EventError, diagnostic); err != nil {
		o.Logger.Error("failed to append terminal error event", "correlation_id", req.CorrelationID, "error", err)
		return fmt.Errorf("append terminal error event: %w", err)
	}
	return nil
}
