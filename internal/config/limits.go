package config

import "time"

const (
	// MinMessageLength is the minimum accepted length for a submitted chat message.
	MinMessageLength = 1

	// MaxMessageLength is the maximum accepted length for a submitted chat message.
	MaxMessageLength = 4000

	// DefaultResponseTTL is how long a Response and its ProgressEvents remain
	// retrievable after a terminal event, absent an explicit RESPONSE_TTL override.
	DefaultResponseTTL = 10 * time.Minute

	// DefaultTurnTimeout is the hard cap on a single turn's execution.
	DefaultTurnTimeout = 120 * time.Second

	// DefaultStreamIdleTimeout bounds a single SSE connection before the client
	// is expected to reconnect.
	DefaultStreamIdleTimeout = 60 * time.Second

	// DefaultKeepAliveInterval is the cadence of SSE keep-alive comments.
	DefaultKeepAliveInterval = 10 * time.Second

	// MaxStageRetries bounds the attempts (first call included) made on an
	// LLM/Retriever call that fails transiently.
	MaxStageRetries = 3

	// MaxThreadStateConflictRetries bounds the optimistic-concurrency CAS loop
	// on ThreadState updates.
	MaxThreadStateConflictRetries = 3

	// MaxSubquestions bounds how many subquestions a Plan stage may emit for a
	// single turn.
	MaxSubquestions = 6
)
