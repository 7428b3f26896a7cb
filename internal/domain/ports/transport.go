// Package ports declares the interfaces the Orchestrator and Front API are
// built against. Two families live here: the Transport & Store substrate
// (RequestQueue, ResponseStore, ProgressLog) and the external collaborators
// consumed through named contracts (LLM, Retriever, WebSearcher).
package ports

import (
	"context"

	"policyrelay/internal/domain/models"
)

// RequestHandler processes one claimed Request. If it returns an error the
// request is considered lost: RequestQueue implementations never redeliver.
type RequestHandler func(ctx context.Context, req models.Request) error

// RequestQueue is the correlation-keyed submission channel between the Front
// API and the Orchestrator. At-most-once delivery: a handler failure loses
// the request rather than redelivering a stale turn.
type RequestQueue interface {
	// Publish enqueues req. Returns domain.ErrQueueUnavailable if the
	// backing store is unreachable.
	Publish(ctx context.Context, req models.Request) error

	// Consume blocks until a request arrives, delivers it to handler, and
	// returns once handler completes. Returns when ctx is cancelled.
	Consume(ctx context.Context, handler RequestHandler) error
}

// ResponseStore durably captures the single terminal Response for a
// correlation_id.
type ResponseStore interface {
	// Put is idempotent: a second write for the same correlation_id is a
	// no-op and the first response remains observable.
	Put(ctx context.Context, resp models.Response) error

	// Get returns domain.ErrNotFound if no response has been written yet.
	Get(ctx context.Context, correlationID string) (models.Response, error)
}

// ProgressReader is a live or snapshot cursor over one correlation_id's
// ProgressEvent feed.
type ProgressReader interface {
	// Next blocks until an event with seq > the cursor's last-seen seq is
	// available, a terminal event has already been observed, ctx is
	// cancelled, or the reader's deadline elapses. ok is false once the
	// feed is exhausted for this reader (terminal event consumed, or the
	// deadline/context ended the read).
	Next(ctx context.Context) (event models.ProgressEvent, ok bool, err error)

	// Close releases the reader. Safe to call multiple times.
	Close()
}

// ProgressLog is the append-only, per-correlation ordered event feed.
type ProgressLog interface {
	// Append atomically assigns the next seq for correlationID and stores
	// event, returning the assigned seq.
	Append(ctx context.Context, correlationID string, event models.ProgressEvent) (seq uint64, err error)

	// ReadFrom returns a live reader yielding events with seq > afterSeq,
	// in order, blocking for new events until a terminal event is
	// observed or ctx is cancelled.
	ReadFrom(ctx context.Context, correlationID string, afterSeq uint64) (ProgressReader, error)

	// ReadSnapshot returns a non-blocking point-in-time list of every event
	// recorded so far for correlationID, used by the poll fallback.
	ReadSnapshot(ctx context.Context, correlationID string) ([]models.ProgressEvent, error)
}
