// Package chatapi implements the Front API's six HTTP endpoints: turn
// submission, poll, live stream, and the three history projections. Handlers
// never talk to the Orchestrator directly; they go through the
// RequestQueue/ResponseStore/ProgressLog ports so the Front API and the
// Orchestrator can run as one process or two. The serialize-or-reject
// concurrency policy is enforced on the Orchestrator's consume side
// (orchestrator.HandleRequest): a busy thread still gets a correlation_id
// here, but its Response resolves to status=failed almost immediately.
package chatapi

import (
	"log/slog"
	"time"

	"policyrelay/internal/domain/ports"
)

// Handler holds every dependency the six endpoints need.
type Handler struct {
	Logger      *slog.Logger
	Queue       ports.RequestQueue
	Responses   ports.ResponseStore
	Progress    ports.ProgressLog
	History     ports.TurnHistory
	StreamIdle  time.Duration
	DebugEvents bool
}

// New constructs a Handler.
func New(
	logger *slog.Logger,
	queue ports.RequestQueue,
	responses ports.ResponseStore,
	progress ports.ProgressLog,
	history ports.TurnHistory,
	streamIdle time.Duration,
	debugEvents bool,
) *Handler {
	return &Handler{
		Logger:      logger,
		Queue:       queue,
		Responses:   responses,
		Progress:    progress,
		History:     history,
		StreamIdle:  streamIdle,
		DebugEvents: debugEvents,
	}
}
