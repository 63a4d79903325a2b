// Package investigate answers questions about market players: how many
// stores a company runs, whether a tracked player is still accurate,
// which attributes a service carries, and who has newly entered the
// market. Anything the model leaves inconclusive is flagged for manual
// review instead of guessed at.
package investigate

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// OptimalConcurrency picks a parallelism level for a batch: small batches
// run all at once, large ones are throttled to stay inside API rate
// limits.
func OptimalConcurrency(n int) int {
	switch {
	case n <= 0:
		return 1
	case n <= 5:
		return n
	case n <= 20:
		return 3
	case n <= 100:
		return 2
	default:
		return 1
	}
}

// Progress reports batch advancement: items finished so far, the total,
// and a label for what just completed.
type Progress func(current, total int, label string)

func (p Progress) report(current, total int, label string) {
	if p != nil {
		p(current, total, label)
	}
}

// runBatch applies fn to every item with bounded concurrency and a pacing
// delay after each call. fn must not panic and returns its own
// error-shaped result; one slow or broken item never stops the rest.
// Results keep the input order.
func runBatch[T, R any](ctx context.Context, items []T, concurrency int, delay time.Duration, fn func(ctx context.Context, idx int, item T) R) []R {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency(len(items))
	}

	results := make([]R, len(items))
	sem := semaphore.NewWeighted(int64(concurrency))

	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(items); j++ {
				results[j] = fn(ctx, j, items[j])
			}
			break
		}
		go func(idx int, it T) {
			defer sem.Release(1)
			results[idx] = fn(ctx, idx, it)
			sleep(ctx, delay)
		}(i, item)
	}

	// Drain: all permits held means all workers finished.
	_ = sem.Acquire(context.Background(), int64(concurrency))
	return results
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
