package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
)

func TestQueue_PublishConsumeAtMostOnce(t *testing.T) {
	q := NewQueue(4)
	ctx := context.Background()
	req := models.Request{CorrelationID: "c1", ThreadID: "t1", Message: "hi"}

	require.NoError(t, q.Publish(ctx, req))

	var handled models.Request
	err := q.Consume(ctx, func(ctx context.Context, r models.Request) error {
		handled = r
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, req, handled)
}

func TestQueue_HandlerFailureDoesNotRedeliver(t *testing.T) {
	q := NewQueue(4)
	ctx := context.Background()
	req := models.Request{CorrelationID: "c2", ThreadID: "t2", Message: "hi"}
	require.NoError(t, q.Publish(ctx, req))

	calls := 0
	err := q.Consume(ctx, func(ctx context.Context, r models.Request) error {
		calls++
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	var handler ports.RequestHandler = func(ctx context.Context, r models.Request) error {
		t.Fatal("handler should not be invoked: request was never redelivered")
		return nil
	}
	err = q.Consume(cctx, handler)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
