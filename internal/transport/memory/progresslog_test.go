package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrelay/internal/domain/models"
)

func TestProgressLog_AppendAssignsMonotonicSeq(t *testing.T) {
	log := NewProgressLog()
	ctx := context.Background()
	cid := "cid-1"

	seq1, err := log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "first"})
	require.NoError(t, err)
	seq2, err := log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "second"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), seq1)
	assert.Equal(t, uint64(2), seq2)
}

func TestProgressLog_ReadFromReplaysThenBlocksUntilTerminal(t *testing.T) {
	log := NewProgressLog()
	ctx := context.Background()
	cid := "cid-2"

	_, err := log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "plan ready"})
	require.NoError(t, err)

	reader, err := log.ReadFrom(ctx, cid, 0)
	require.NoError(t, err)
	defer reader.Close()

	e, ok, err := reader.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), e.Seq)

	done := make(chan models.ProgressEvent, 1)
	go func() {
		e, ok, err := reader.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		done <- e
	}()

	time.Sleep(20 * time.Millisecond)
	_, err = log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventCompleted, Payload: "done"})
	require.NoError(t, err)

	select {
	case e := <-done:
		assert.Equal(t, models.EventCompleted, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for terminal event")
	}

	_, ok, err = reader.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no events are valid after a terminal event")
}

func TestProgressLog_ReadSnapshotIsNonBlocking(t *testing.T) {
	log := NewProgressLog()
	ctx := context.Background()
	cid := "cid-3"

	snap, err := log.ReadSnapshot(ctx, cid)
	require.NoError(t, err)
	assert.Empty(t, snap)

	log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "a"})
	log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "b"})

	snap, err = log.ReadSnapshot(ctx, cid)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, uint64(1), snap[0].Seq)
	assert.Equal(t, uint64(2), snap[1].Seq)
}

func TestProgressLog_SnapshotThenLiveFromMaxSeqEqualsLiveFromZero(t *testing.T) {
	log := NewProgressLog()
	ctx := context.Background()
	cid := "cid-4"

	for i := 0; i < 3; i++ {
		log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventThinking, Payload: "x"})
	}
	log.Append(ctx, cid, models.ProgressEvent{Kind: models.EventCompleted, Payload: "done"})

	snap, err := log.ReadSnapshot(ctx, cid)
	require.NoError(t, err)
	maxSeq := snap[len(snap)-1].Seq

	fromSnap, err := log.ReadFrom(ctx, cid, maxSeq)
	require.NoError(t, err)
	defer fromSnap.Close()
	var tailEvents []models.ProgressEvent
	for {
		e, ok, err := fromSnap.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		tailEvents = append(tailEvents, e)
	}
	assert.Empty(t, tailEvents)

	fromZero, err := log.ReadFrom(ctx, cid, 0)
	require.NoError(t, err)
	defer fromZero.Close()
	var allEvents []models.ProgressEvent
	for {
		e, ok, err := fromZero.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		allEvents = append(allEvents, e)
	}

	assert.Equal(t, snap, allEvents)
}
