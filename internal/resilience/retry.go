// Package resilience wraps external-collaborator calls (LLM, Retriever)
// with bounded exponential backoff, grounding the Orchestrator's "retry
// with bounded backoff, max 3 attempts" failure semantics in one place.
package resilience

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"policyrelay/internal/config"
)

// Do runs fn, retrying with exponential backoff while fn returns a non-nil
// error, for at most config.MaxStageRetries attempts in all (the first call
// included). It stops early if ctx is cancelled.
func Do(ctx context.Context, fn func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), config.MaxStageRetries-1),
		ctx,
	)
	return backoff.Retry(fn, policy)
}
