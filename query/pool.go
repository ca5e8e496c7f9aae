package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// mapConcurrent runs fn over every item with at most limit in flight,
// collecting one result per item in input order. Errors abort the
// remaining work via the errgroup's shared context, per spec.md §5's
// "candidates may be parallelised over a small worker pool".
func mapConcurrent[T any, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	group, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
