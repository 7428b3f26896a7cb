package ports

import (
	"context"

	"policyrelay/internal/domain/models"
)

// ThreadStateStore owns ThreadState persistence and its optimistic
// concurrency contract. Writes are serialized per thread_id by the caller
// (the per-thread lock Orchestrator.HandleRequest holds for a turn);
// CompareAndSwap is the last line of defense against a broken
// serialization promise.
type ThreadStateStore interface {
	// Load returns the current state for threadID, or a fresh
	// models.NewThreadState(threadID) if none exists yet.
	Load(ctx context.Context, threadID string) (models.ThreadState, error)

	// CompareAndSwap writes next if the stored version still equals
	// expectedVersion, atomically bumping the stored version by one and
	// returning the newly stored state. Returns domain.ErrConflict if the
	// stored version has moved on.
	CompareAndSwap(ctx context.Context, next models.ThreadState, expectedVersion int64) (models.ThreadState, error)
}
