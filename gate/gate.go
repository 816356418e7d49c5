package gate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cristobalvch/ratelimiter-code-challenge/bucket"
)

// Recorder records the outcome of admission checks.
type Recorder interface {
	RecordRequest(allowed bool)
}

// Decision is the result of an admission check.
type Decision struct {
	// Allowed indicates whether the guarded operation may proceed
	Allowed bool

	// RetryAfter is how long to wait before the next request would be
	// allowed. Zero when Allowed is true.
	RetryAfter time.Duration
}

// Gate guards an operation with a token bucket admission check.
// It holds a reference to its bucket but does not own its lifecycle;
// several gates may share one bucket for global limiting, or each hold a
// private bucket for per-route limiting.
type Gate struct {
	bucket  *bucket.TokenBucket
	metrics Recorder
}

// New creates a gate backed by the given bucket.
// metrics may be nil to disable recording.
func New(b *bucket.TokenBucket, metrics Recorder) *Gate {
	return &Gate{bucket: b, metrics: metrics}
}

// Check consumes one token from the bucket and reports the decision.
// Callers must not run the guarded operation when the decision is a deny.
func (g *Gate) Check() Decision {
	allowed := g.bucket.Allow()

	if g.metrics != nil {
		g.metrics.RecordRequest(allowed)
	}

	if allowed {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RetryAfter: g.bucket.RetryAfter()}
}

// Middleware wraps an http.Handler with the admission check.
// Denied requests receive 429 Too Many Requests with a JSON error body and
// a Retry-After header; admitted requests pass through untouched.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dec := g.Check()

		if !dec.Allowed {
			retryAfterSec := int64(dec.RetryAfter.Seconds())
			if retryAfterSec == 0 {
				retryAfterSec = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSec))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "rate_limit_exceeded",
				"message": "Rate limit exceeded. Try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
