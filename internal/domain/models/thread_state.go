package models

// ThreadState is the short-term per-thread state carried across turns.
// It is immutable: every mutation goes through ApplyDelta, which returns a
// new value rather than patching fields in place. version is bumped by the
// store on a successful optimistic-concurrency write, never by ApplyDelta
// itself.
type ThreadState struct {
	ThreadID           string            `json:"thread_id"`
	Version            int64             `json:"version"`
	ActiveJurisdiction string            `json:"active_jurisdiction,omitempty"`
	OpenSlots          []string          `json:"open_slots,omitempty"`
	RefinedQuery       string            `json:"refined_query,omitempty"`
	LastBlueprint      *Blueprint        `json:"last_blueprint,omitempty"`
	Transcript         []TranscriptEntry `json:"transcript,omitempty"`
}

// NewThreadState returns the default state for a thread that has not yet
// had a turn.
func NewThreadState(threadID string) ThreadState {
	return ThreadState{ThreadID: threadID, Version: 0}
}

// PendingClarification reports whether this thread is mid-refinement: it has
// both open slots and a persisted blueprint to resume.
func (s ThreadState) PendingClarification() bool {
	return len(s.OpenSlots) > 0 && s.LastBlueprint != nil
}

// Delta describes a whole-record replacement of the mutable fields of
// ThreadState. Every field is set explicitly; there is no field-by-field
// shallow merge of partial updates.
type Delta struct {
	ActiveJurisdiction string
	OpenSlots          []string
	RefinedQuery       string
	LastBlueprint      *Blueprint
	AppendTranscript   []TranscriptEntry
}

// ApplyDelta returns a new ThreadState with the delta's fields replacing the
// corresponding fields of s wholesale, and AppendTranscript appended to the
// existing transcript. Version is left unchanged; the store assigns the next
// version on a successful compare-and-swap write.
func (s ThreadState) ApplyDelta(d Delta) ThreadState {
	next := ThreadState{
		ThreadID:           s.ThreadID,
		Version:            s.Version,
		ActiveJurisdiction: d.ActiveJurisdiction,
		OpenSlots:          d.OpenSlots,
		RefinedQuery:       d.RefinedQuery,
		LastBlueprint:      d.LastBlueprint,
	}
	next.Transcript = make([]TranscriptEntry, 0, len(s.Transcript)+len(d.AppendTranscript))
	next.Transcript = append(next.Transcript, s.Transcript...)
	next.Transcript = append(next.Transcript, d.AppendTranscript...)
	return next
}
