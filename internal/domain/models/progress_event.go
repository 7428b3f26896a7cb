package models

import "time"

// ProgressEventKind enumerates the kinds of entries in a ProgressLog.
type ProgressEventKind string

const (
	EventThinking     ProgressEventKind = "thinking"
	EventMessageChunk ProgressEventKind = "message_chunk"
	EventCompleted    ProgressEventKind = "completed"
	EventError        ProgressEventKind = "error"
)

// Terminal reports whether this kind closes the stream for a correlation_id.
func (k ProgressEventKind) Terminal() bool {
	return k == EventCompleted || k == EventError
}

// ProgressEvent is one append-only, totally ordered entry in a
// correlation_id's live feed.
type ProgressEvent struct {
	Seq           uint64            `json:"seq"`
	CorrelationID string            `json:"correlation_id"`
	Kind          ProgressEventKind `json:"kind"`
	Payload       string            `json:"payload"`
	Timestamp     time.Time         `json:"timestamp"`
}
