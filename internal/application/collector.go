// Package application contains the aggregation pipeline and its orchestrators.
package application

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn once per item with at most limit invocations in flight.
// It is the single fan-out primitive behind every multi-item network
// operation (contributor, follower, and dependents fetches).
//
// Item failures are isolated: a failure is logged and counted, the item
// contributes nothing to aggregates, and sibling items keep running. Every
// item completes (or fails in isolation) before ForEach returns. The returned
// count is the number of failed items. Context cancellation is the only error
// that propagates; once the context is done, pending items stop immediately.
func ForEach[T any](ctx context.Context, label string, items []T, limit int, fn func(context.Context, T) error) (int, error) {
	if limit < 1 {
		limit = 1
	}

	var failed atomic.Int64

	eg := new(errgroup.Group)
	eg.SetLimit(limit)

	for _, item := range items {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := fn(ctx, item); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				slog.Warn("fan-out item failed, skipping", "op", label, "error", err)
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return int(failed.Load()), err
	}

	return int(failed.Load()), nil
}
