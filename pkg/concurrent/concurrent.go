package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/jetgraph/pkg/sequence"
)

// Concurrent runs action for each element of the iterator with at most limit
// goroutines at a time; limit <= 0 means no limit. The context passed to
// action is cancelled on the first error, which is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	errGroup, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		errGroup.SetLimit(limit)
	}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}
		if ctx.Err() != nil {
			break
		}

		errGroup.Go(func() error {
			return action(ctx, value)
		})
	}

	return errGroup.Wait()
}

// ParallelMap applies mapFn to each element of the iterator in parallel,
// preserving order. Every element is processed, even after ctx is done;
// mapFn reports failures in its result. The workers parameter bounds the
// number of goroutines.
func ParallelMap[T any, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(context.Context, T) R) []R {
	in := i.Collect()
	out := make([]R, len(in))

	indexes := make([]int, len(in))
	for idx := range indexes {
		indexes[idx] = idx
	}
	_ = Concurrent(context.WithoutCancel(ctx), sequence.From(indexes), workers, func(_ context.Context, idx int) error {
		out[idx] = mapFn(ctx, in[idx])
		return nil
	})
	return out
}
