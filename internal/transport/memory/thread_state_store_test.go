package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

func TestThreadStateStore_LoadDefaultsToFreshState(t *testing.T) {
	s := NewThreadStateStore()
	st, err := s.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Version)
	assert.Empty(t, st.OpenSlots)
}

func TestThreadStateStore_CompareAndSwapBumpsVersion(t *testing.T) {
	s := NewThreadStateStore()
	ctx := context.Background()
	st, _ := s.Load(ctx, "t1")

	next := st.ApplyDelta(models.Delta{OpenSlots: []string{"payer"}})
	saved, err := s.CompareAndSwap(ctx, next, st.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)
	assert.Equal(t, []string{"payer"}, saved.OpenSlots)
}

func TestThreadStateStore_CompareAndSwapConflictOnStaleVersion(t *testing.T) {
	s := NewThreadStateStore()
	ctx := context.Background()
	st, _ := s.Load(ctx, "t1")

	_, err := s.CompareAndSwap(ctx, st.ApplyDelta(models.Delta{}), st.Version)
	require.NoError(t, err)

	_, err = s.CompareAndSwap(ctx, st.ApplyDelta(models.Delta{}), st.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
