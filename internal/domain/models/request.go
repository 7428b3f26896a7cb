package models

import "time"

// Request is written once by the Front API and consumed once by one
// Orchestrator instance.
type Request struct {
	CorrelationID string    `json:"correlation_id"`
	ThreadID      string    `json:"thread_id"`
	Message       string    `json:"message"`
	SubmittedAt   time.Time `json:"submitted_at"`
	ActorID       string    `json:"actor_id,omitempty"`
}
