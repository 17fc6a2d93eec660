package memcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(defaultTTL time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	store := New(defaultTTL)
	store.now = clock.Now
	return store, clock
}

func TestStore_MissOnUnknownKey(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	_, ok := store.Get("absent")
	assert.False(t, ok)
}

func TestStore_SetThenGet(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	store.Set("k", 42)

	v, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestStore_ExpiryBehavesAsMiss(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.Set("k", "value")

	clock.Advance(59 * time.Second)
	_, ok := store.Get("k")
	assert.True(t, ok, "entry should still be live before the TTL elapses")

	clock.Advance(2 * time.Second)
	_, ok = store.Get("k")
	assert.False(t, ok, "a read past expiry must behave identically to a miss")
	assert.Equal(t, 0, store.Len(), "expired entry should be lazily deleted")
}

func TestStore_SetWithTTLOverridesDefault(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.SetWithTTL("k", "value", time.Hour)

	clock.Advance(30 * time.Minute)
	_, ok := store.Get("k")
	assert.True(t, ok)
}

func TestStore_OverwriteResetsExpiry(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.Set("k", "old")
	clock.Advance(45 * time.Second)
	store.Set("k", "new")
	clock.Advance(45 * time.Second)

	v, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestStore_SweepRemovesOnlyExpired(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.Set("stale", 1)
	clock.Advance(2 * time.Minute)
	store.Set("fresh", 2)

	removed := store.sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("fresh")
	assert.True(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "k" + string(rune('a'+n%5))
			store.Set(key, n)
			store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, store.Len())
}
