// Package models defines the core entities of a turn: requests, responses,
// progress events, thread state, blueprints and transcripts.
package models

import "github.com/google/uuid"

// NewCorrelationID mints an opaque identifier for one submission/response pair.
func NewCorrelationID() string {
	return uuid.NewString()
}

// NewThreadID mints an identifier for a conversation.
func NewThreadID() string {
	return uuid.NewString()
}
