package models

import "time"

// SearchQuery is one rag-path subquestion resolved during a turn, paired
// with the best corpus confidence its retrieval returned.
type SearchQuery struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TurnRecord is the durable, read-only projection of one completed turn
// used by the history endpoints. It is written once, at publish time,
// alongside the turn's Response; it never carries pending or failed turns.
type TurnRecord struct {
	ThreadID         string        `json:"thread_id"`
	CorrelationID    string        `json:"correlation_id"`
	UserMessage      string        `json:"user_message"`
	AssistantMessage string        `json:"assistant_message"`
	Queries          []SearchQuery `json:"queries,omitempty"`
	Sources          []SourceRef   `json:"sources,omitempty"`
	CompletedAt      time.Time     `json:"completed_at"`
}
