package ratelimiter

import (
	"github.com/cristobalvch/ratelimiter-code-challenge/bucket"
	"github.com/cristobalvch/ratelimiter-code-challenge/gate"
)

// Re-export main types for convenience
type (
	TokenBucket = bucket.TokenBucket
	Gate        = gate.Gate
	Decision    = gate.Decision
)

// NewTokenBucket creates a new token bucket
var NewTokenBucket = bucket.New

// NewGate creates a new admission gate
var NewGate = gate.New
