package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
)

// Queue is the Redis-backed distributed implementation of ports.RequestQueue:
// a list with RPUSH on publish and BLPOP on consume, giving list-style
// blocking pop with at-most-once delivery (BLPOP removes the element before
// it reaches a handler).
type Queue struct {
	client  *redis.Client
	listKey string
}

// NewQueue constructs a Redis-backed request queue using the given list key.
func NewQueue(client *redis.Client, listKey string) *Queue {
	return &Queue{client: client, listKey: listKey}
}

func (q *Queue) Publish(ctx context.Context, req models.Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := q.client.RPush(ctx, q.listKey, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Consume blocks on BLPOP until a request arrives or ctx is cancelled,
// delivers it to handler, and returns once handler completes. At-most-once:
// BLPOP has already removed the element, so a handler failure loses the
// request rather than redelivering it.
func (q *Queue) Consume(ctx context.Context, handler ports.RequestHandler) error {
	// 0 blocks indefinitely; ctx cancellation still interrupts the call.
	result, err := q.client.BLPop(ctx, 0, q.listKey).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}

	// BLPop returns [key, value].
	if len(result) != 2 {
		return fmt.Errorf("%w: unexpected BLPOP result shape", domain.ErrFatalBackend)
	}

	var req models.Request
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	return handler(ctx, req)
}
