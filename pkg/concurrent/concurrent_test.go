package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/jetgraph/pkg/sequence"
)

func TestConcurrent_RunsAll(t *testing.T) {
	var sum atomic.Int64
	err := Concurrent(context.Background(), sequence.From([]int{1, 2, 3, 4}), 2, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.Load())
}

func TestConcurrent_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Concurrent(context.Background(), sequence.From([]int{1, 2, 3}), 1, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestConcurrent_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)

	err := Concurrent(context.Background(), sequence.From(items), 3, func(context.Context, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestParallelMap_PreservesOrder(t *testing.T) {
	out := ParallelMap(context.Background(), sequence.From([]string{"a", "bb", "ccc"}), 2, func(_ context.Context, s string) int {
		return len(s)
	})
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestParallelMap_CancelledContextStillMapsAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := ParallelMap(ctx, sequence.From([]string{"a", "b"}), 1, func(ctx context.Context, s string) string {
		if ctx.Err() != nil {
			return s + ":cancelled"
		}
		return s
	})
	assert.Equal(t, []string{"a:cancelled", "b:cancelled"}, out)
}
