package bucket

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket rate limiting algorithm with lazy
// refill: tokens accumulate continuously at refillRate up to capacity, and
// are only computed when the bucket is consulted. There is no background
// timer, so idle periods cost nothing and a full burst is always available
// after enough idle time.
//
// All methods are safe for concurrent use. The whole read-refill-test-consume
// sequence runs under one mutex, so two racing callers can never both spend
// the last token.
type TokenBucket struct {
	mu          sync.Mutex
	capacity    int64
	tokens      float64
	refillRate  float64 // tokens added per second
	lastChecked time.Time
	now         func() time.Time
}

// New creates a token bucket that starts full.
// Capacity is the burst ceiling; refillRate is tokens added per second.
// Negative arguments are clamped to zero. A zero capacity bucket never
// admits; a zero refill rate stops refills once the initial burst is spent.
func New(capacity int64, refillRate float64) *TokenBucket {
	if capacity < 0 {
		capacity = 0
	}
	if refillRate < 0 {
		refillRate = 0
	}

	b := &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity), // Start with full bucket
		refillRate: refillRate,
		now:        time.Now,
	}
	b.lastChecked = b.now()
	return b
}

// Allow attempts to consume one token.
// It returns true if the request is admitted, false otherwise. Either way it
// advances the refill clock and tops up tokens for the elapsed interval, so
// every call mutates the bucket. Allow cannot fail.
func (b *TokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// refill adds tokens for the time elapsed since the last check and advances
// lastChecked unconditionally. MUST be called with b.mu held.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastChecked).Seconds()
	b.lastChecked = now

	b.tokens += elapsed * b.refillRate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
}

// UpdateConfig replaces the capacity and refill rate at runtime, atomically
// with respect to concurrent Allow calls. The current token count is clamped
// down to the new capacity so a shrink cannot leave the bucket over-full.
// Raising the capacity grants no tokens immediately; future refills simply
// have more room to accumulate into. The refill clock is not reset.
// Negative arguments are clamped to zero.
func (b *TokenBucket) UpdateConfig(capacity int64, refillRate float64) {
	if capacity < 0 {
		capacity = 0
	}
	if refillRate < 0 {
		refillRate = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.capacity = capacity
	b.refillRate = refillRate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
}

// Snapshot is a point-in-time view of the bucket.
type Snapshot struct {
	Capacity   int64
	Tokens     float64
	RefillRate float64
}

// Snapshot refills the bucket for the elapsed interval and returns its
// current configuration and token count. The values may change immediately
// under concurrent access.
func (b *TokenBucket) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return Snapshot{
		Capacity:   b.capacity,
		Tokens:     b.tokens,
		RefillRate: b.refillRate,
	}
}

// RetryAfter reports how long to wait before the next Allow would succeed.
// It returns 0 if a token is available now, and also 0 when the refill rate
// is zero, since no amount of waiting helps then; callers that need to tell
// the two apart should consult Snapshot.
func (b *TokenBucket) RetryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1 || b.refillRate <= 0 {
		return 0
	}

	tokensNeeded := 1.0 - b.tokens
	secondsNeeded := tokensNeeded / b.refillRate
	return time.Duration(secondsNeeded * float64(time.Second))
}
