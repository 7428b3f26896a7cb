package orchestrator

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisThreadLocks is the distributed counterpart to ThreadLocks: a
// `SET NX PX` advisory lock per thread_id, for deployments running multiple
// Orchestrator processes against the external Transport & Store.
type RedisThreadLocks struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ ThreadLocker = (*RedisThreadLocks)(nil)

// NewRedisThreadLocks constructs a distributed thread lock. ttl bounds how
// long a crashed holder can block a thread before the lock self-expires.
func NewRedisThreadLocks(client *redis.Client, ttl time.Duration) *RedisThreadLocks {
	return &RedisThreadLocks{client: client, ttl: ttl, prefix: "policyrelay:threadlock:"}
}

// TryLock claims thread_id. Returns false if another process already holds
// the lock (or on a Redis error, failing closed to serialize rather than
// risk a concurrent turn).
func (l *RedisThreadLocks) TryLock(threadID string) bool {
	ok, err := l.client.SetNX(context.Background(), l.prefix+threadID, "1", l.ttl).Result()
	if err != nil {
		return false
	}
	return ok
}

// Unlock releases thread_id early instead of waiting for ttl to expire.
func (l *RedisThreadLocks) Unlock(threadID string) {
	l.client.Del(context.Background(), l.prefix+threadID)
}
