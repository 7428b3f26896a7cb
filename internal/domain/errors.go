package domain

import "errors"

// Domain errors - use with errors.Is()
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation, including an
	// optimistic-concurrency version mismatch on ThreadState.
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates authentication failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates authorization failure.
	ErrForbidden = errors.New("forbidden")

	// ErrQueueUnavailable indicates the request queue could not accept or
	// deliver a turn. Callers should surface this as retryable.
	ErrQueueUnavailable = errors.New("queue unavailable")

	// ErrFatalBackend indicates a persistence failure that must not be
	// papered over with an in-memory fallback; the caller should fail the
	// turn rather than silently continue in a degraded mode.
	ErrFatalBackend = errors.New("backend failure")

	// ErrTurnTimeout indicates a turn exceeded its execution deadline
	// before reaching a terminal state.
	ErrTurnTimeout = errors.New("turn timed out")

	// ErrThreadBusy indicates a prior turn on the thread has not yet
	// reached a terminal Response; the caller should reject rather than
	// interleave turns on the same thread.
	ErrThreadBusy = errors.New("thread has a turn in progress")
)
