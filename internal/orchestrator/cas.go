package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"policyrelay/internal/config"
	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"
)

// persistState applies mutate to base and writes the result with optimistic
// concurrency control: read version V, write V+1 conditional on the store
// still holding V, else re-read and retry, making at most
// config.MaxThreadStateConflictRetries write attempts in all. A persistent
// conflict past that bound indicates a broken per-thread serialization promise and fails
// the turn.
func (o *Orchestrator) persistState(ctx context.Context, base models.ThreadState, mutate func(models.ThreadState) models.Delta) error {
	state := base
	for attempt := 0; attempt < config.MaxThreadStateConflictRetries; attempt++ {
		next := state.ApplyDelta(mutate(state))
		_, err := o.ThreadStates.CompareAndSwap(ctx, next, state.Version)
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return fmt.Errorf("persist thread state: %w", err)
		}

		reloaded, loadErr := o.ThreadStates.Load(ctx, base.ThreadID)
		if loadErr != nil {
			return fmt.Errorf("reload thread state after conflict: %w", loadErr)
		}
		state = reloaded
	}
	return fmt.Errorf("persist thread state: %w", domain.ErrConflict)
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
