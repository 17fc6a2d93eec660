package application_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/orgpulse/internal/application"
)

func TestForEach_ConcurrencyBound(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight atomic.Int64

	failed, err := application.ForEach(context.Background(), "test", items, 3, func(_ context.Context, _ int) error {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	assert.LessOrEqual(t, maxInFlight.Load(), int64(3), "no more than 3 operations may be in flight")
	assert.Greater(t, maxInFlight.Load(), int64(1), "work should actually run concurrently")
}

func TestForEach_FaultIsolation(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	var mu sync.Mutex
	var collected []int

	failed, err := application.ForEach(context.Background(), "test", items, 4, func(_ context.Context, n int) error {
		if n == 2 || n == 7 {
			return errors.New("boom")
		}
		mu.Lock()
		collected = append(collected, n)
		mu.Unlock()
		return nil
	})

	require.NoError(t, err, "item failures must not fail the collection")
	assert.Equal(t, 2, failed)
	assert.Len(t, collected, 8, "the successful items must all be collected")
}

func TestForEach_AllItemsCompleteBeforeReturn(t *testing.T) {
	var done atomic.Int64

	_, err := application.ForEach(context.Background(), "test", []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, _ int) error {
		time.Sleep(10 * time.Millisecond)
		done.Add(1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), done.Load())
}

func TestForEach_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int64

	items := make([]int, 50)
	_, err := application.ForEach(ctx, "test", items, 2, func(_ context.Context, _ int) error {
		if started.Add(1) == 2 {
			cancel()
		}
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, started.Load(), int64(50), "pending items should stop once the context is done")
}

func TestForEach_EmptyInput(t *testing.T) {
	failed, err := application.ForEach(context.Background(), "test", nil, 3, func(_ context.Context, _ string) error {
		t.Fatal("fn must not be called for empty input")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, failed)
}
