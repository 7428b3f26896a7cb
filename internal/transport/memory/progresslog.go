// Package memory implements Implementation A of the Transport & Store
// substrate: single-process, in-memory RequestQueue, ResponseStore and
// ProgressLog. No persistence across restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
)

// correlationLog is one correlation_id's append-only event slice plus a
// notify channel that is closed and replaced on every Append, waking every
// blocked reader. Mirrors the pack's per-log notify-channel broadcast
// pattern, scoped to a single correlation_id instead of a whole service.
type correlationLog struct {
	mu     sync.RWMutex
	events []models.ProgressEvent
	seq    uint64
	notify chan struct{}
}

func newCorrelationLog() *correlationLog {
	return &correlationLog{notify: make(chan struct{})}
}

func (l *correlationLog) append(event models.ProgressEvent) uint64 {
	l.mu.Lock()
	l.seq++
	event.Seq = l.seq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	l.events = append(l.events, event)
	ch := l.notify
	l.notify = make(chan struct{})
	l.mu.Unlock()
	close(ch)
	return event.Seq
}

func (l *correlationLog) since(seq uint64) []models.ProgressEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := sort.Search(len(l.events), func(i int) bool { return l.events[i].Seq > seq })
	if i >= len(l.events) {
		return nil
	}
	out := make([]models.ProgressEvent, len(l.events)-i)
	copy(out, l.events[i:])
	return out
}

func (l *correlationLog) snapshot() []models.ProgressEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ProgressEvent, len(l.events))
	copy(out, l.events)
	return out
}

// ProgressLog is the in-process Implementation A of ports.ProgressLog. Each
// correlation_id gets its own correlationLog so readers on one id never
// contend with writers on another.
type ProgressLog struct {
	mu   sync.Mutex
	logs map[string]*correlationLog
}

// NewProgressLog constructs an empty in-process ProgressLog.
func NewProgressLog() *ProgressLog {
	return &ProgressLog{logs: make(map[string]*correlationLog)}
}

func (p *ProgressLog) logFor(correlationID string) *correlationLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.logs[correlationID]
	if !ok {
		l = newCorrelationLog()
		p.logs[correlationID] = l
	}
	return l
}

func (p *ProgressLog) Append(ctx context.Context, correlationID string, event models.ProgressEvent) (uint64, error) {
	event.CorrelationID = correlationID
	return p.logFor(correlationID).append(event), nil
}

func (p *ProgressLog) ReadSnapshot(ctx context.Context, correlationID string) ([]models.ProgressEvent, error) {
	return p.logFor(correlationID).snapshot(), nil
}

func (p *ProgressLog) ReadFrom(ctx context.Context, correlationID string, afterSeq uint64) (ports.ProgressReader, error) {
	return &liveReader{log: p.logFor(correlationID), cursor: afterSeq}, nil
}

// liveReader is a blocking, terminal-event-aware cursor over one
// correlationLog.
type liveReader struct {
	log      *correlationLog
	cursor   uint64
	pending  []models.ProgressEvent
	done     bool
	closed   bool
}

func (r *liveReader) Next(ctx context.Context) (models.ProgressEvent, bool, error) {
	if r.closed || r.done {
		return models.ProgressEvent{}, false, nil
	}
	for {
		if len(r.pending) > 0 {
			e := r.pending[0]
			r.pending = r.pending[1:]
			r.cursor = e.Seq
			if e.Kind.Terminal() {
				r.done = true
			}
			return e, true, nil
		}

		r.log.mu.RLock()
		notify := r.log.notify
		terminated := len(r.log.events) > 0 && r.log.events[len(r.log.events)-1].Kind.Terminal()
		r.log.mu.RUnlock()

		batch := r.log.since(r.cursor)
		if len(batch) > 0 {
			r.pending = batch
			continue
		}
		// The feed closed at or before the cursor: nothing more will arrive.
		if terminated {
			r.done = true
			return models.ProgressEvent{}, false, nil
		}

		select {
		case <-notify:
			continue
		case <-ctx.Done():
			return models.ProgressEvent{}, false, ctx.Err()
		}
	}
}

func (r *liveReader) Close() {
	r.closed = true
}
