// Package ratelimit implements the process-wide token-bucket guard applied
// to throttled routes before any handler logic runs.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds bucket tuning parameters.
type Config struct {
	// Capacity is the burst size; currentTokens never exceeds it.
	Capacity float64
	// RefillPerSecond is the steady refill rate. The registration route
	// uses 5.0/1800.0 (five requests per half hour).
	RefillPerSecond float64
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Bucket is a token bucket shared by every caller of a guarded route. The
// refill-then-decrement sequence runs under a single lock so concurrent
// callers can never drain more than Capacity tokens per window.
type Bucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
	cap    float64
	rate   float64
	now    func() time.Time
}

// NewBucket creates a full bucket.
func NewBucket(cfg Config) *Bucket {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Bucket{
		tokens: cfg.Capacity,
		last:   now(),
		cap:    cfg.Capacity,
		rate:   cfg.RefillPerSecond,
		now:    now,
	}
}

// TryAcquire refills tokens proportional to elapsed time, clamped at
// capacity, then consumes one if available. A denied call mutates nothing
// beyond the refill.
func (b *Bucket) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens += elapsed.Seconds() * b.rate
		if b.tokens > b.cap {
			b.tokens = b.cap
		}
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Registry maps route identifiers to their buckets. Buckets are created once
// at process start and live until shutdown; lookups never allocate.
type Registry struct {
	buckets map[string]*Bucket
}

// NewRegistry builds a registry from per-route configs.
func NewRegistry(routes map[string]Config) *Registry {
	buckets := make(map[string]*Bucket, len(routes))
	for route, cfg := range routes {
		buckets[route] = NewBucket(cfg)
	}
	return &Registry{buckets: buckets}
}

// Acquire consumes a token from the named route's bucket. Routes without a
// bucket are unguarded and always allowed.
func (r *Registry) Acquire(route string) error {
	b, ok := r.buckets[route]
	if !ok {
		return nil
	}
	if !b.TryAcquire() {
		return ErrRateLimited
	}
	return nil
}
