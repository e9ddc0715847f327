package parallel

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsOrder(t *testing.T) {
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}
	results, done, err := Map(context.Background(), 7, items, func(_ context.Context, x int) int {
		return x * x
	})
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*i, r)
		assert.True(t, done[i])
	}
}

func TestMapBoundsWorkers(t *testing.T) {
	var active, peak atomic.Int32
	items := make([]int, 200)
	_, _, err := Map(context.Background(), 3, items, func(context.Context, int) bool {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		runtime.Gosched()
		active.Add(-1)
		return true
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestMapCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 100)
	results, done, err := Map(ctx, 1, items, func(_ context.Context, x int) int {
		cancel()
		return 1
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, results[0])
	assert.True(t, done[0])
	assert.False(t, done[99])
}

func TestMapEmpty(t *testing.T) {
	results, done, err := Map(context.Background(), 0, []string(nil), func(context.Context, string) int { return 0 })
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, done)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, runtime.GOMAXPROCS(0), Workers(0))
	assert.Equal(t, 4, Workers(4))
}
