package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

// ResponseStore is the Redis-backed Implementation B of ports.ResponseStore:
// `SET key value EX ttl`, guarded by SETNX so a second Put for an existing
// correlation_id is a no-op, leaving the first response observable.
type ResponseStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewResponseStore constructs a Redis-backed response store.
func NewResponseStore(client *redis.Client, ttl time.Duration) *ResponseStore {
	return &ResponseStore{client: client, ttl: ttl, prefix: "policyrelay:response:"}
}

func (s *ResponseStore) key(correlationID string) string {
	return s.prefix + correlationID
}

func (s *ResponseStore) Put(ctx context.Context, resp models.Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(resp.CorrelationID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFatalBackend, err)
	}
	_ = ok // idempotent: false means a response already existed, which is the desired no-op.
	return nil
}

func (s *ResponseStore) Get(ctx context.Context, correlationID string) (models.Response, error) {
	raw, err := s.client.Get(ctx, s.key(correlationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Response{}, domain.ErrNotFound
		}
		return models.Response{}, fmt.Errorf("%w: %v", domain.ErrFatalBackend, err)
	}

	var resp models.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
