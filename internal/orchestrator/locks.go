package orchestrator

import "sync"

// ThreadLocker is the per-thread advisory lock contract. ThreadLocks (memory)
// and RedisThreadLocks (distributed) both implement it.
type ThreadLocker interface {
	TryLock(threadID string) bool
	Unlock(threadID string)
}

// ThreadLocks enforces the serialize-or-reject concurrency policy: at most
// one turn runs per thread_id at a time. A second submission while a turn
// is in flight is rejected rather than queued, per the chosen resolution
// for concurrent same-thread submissions.
//
// This in-process implementation serves the single-process Transport &
// Store implementation. RedisThreadLocks is the distributed counterpart, a
// Redis `SET NX PX` lock scoped to the same thread_id key; both sit behind
// ThreadLocker.
type ThreadLocks struct {
	mu      sync.Mutex
	inFlight map[string]bool
}

var _ ThreadLocker = (*ThreadLocks)(nil)

// NewThreadLocks constructs an empty lock table.
func NewThreadLocks() *ThreadLocks {
	return &ThreadLocks{inFlight: make(map[string]bool)}
}

// TryLock claims thread_id for the caller. Returns false if another turn
// already holds it.
func (l *ThreadLocks) TryLock(threadID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[threadID] {
		return false
	}
	l.inFlight[threadID] = true
	return true
}

// Unlock releases thread_id. Safe to call only by the holder.
func (l *ThreadLocks) Unlock(threadID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, threadID)
}
