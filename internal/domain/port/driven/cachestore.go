package driven

import "time"

// CacheStore is the port for the cache-aside result store. Implementations
// must tolerate concurrent reads and writes from overlapping orchestrator
// runs. Concurrent misses on the same key are not deduplicated: two callers
// computing the same result redundantly is an accepted tradeoff at
// human-driven request rates (no single-flight guarantee).
type CacheStore interface {
	// Get returns the value stored under key. A value past its expiry
	// behaves identically to a miss.
	Get(key string) (any, bool)

	// Set stores a value under key with the store's default TTL.
	Set(key string, value any)

	// SetWithTTL stores a value under key with an explicit TTL.
	SetWithTTL(key string, value any, ttl time.Duration)
}
