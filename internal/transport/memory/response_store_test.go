package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

func TestResponseStore_PutIsIdempotent(t *testing.T) {
	s := NewResponseStore(time.Minute)
	ctx := context.Background()
	cid := "c1"

	first := models.Response{CorrelationID: cid, Status: models.StatusCompleted, Message: "first"}
	second := models.Response{CorrelationID: cid, Status: models.StatusCompleted, Message: "second"}

	require.NoError(t, s.Put(ctx, first))
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Get(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Message)
}

func TestResponseStore_GetUnknownReturnsNotFound(t *testing.T) {
	s := NewResponseStore(time.Minute)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResponseStore_SweepRemovesExpiredEntries(t *testing.T) {
	s := NewResponseStore(10 * time.Millisecond)
	ctx := context.Background()
	cid := "c2"
	require.NoError(t, s.Put(ctx, models.Response{CorrelationID: cid, Status: models.StatusCompleted}))

	time.Sleep(20 * time.Millisecond)
	s.Sweep()

	_, err := s.Get(ctx, cid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
