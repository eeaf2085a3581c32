package ratelimiter

import "golang.org/x/time/rate"

// TokenBucket implements RateLimiter with golang.org/x/time/rate.
// It allows bursts of requests up to the bucket's capacity.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a new TokenBucket.
// ratePerSecond: the number of tokens generated per second.
// capacity: the maximum number of tokens (burst size).
func NewTokenBucket(ratePerSecond float64, capacity int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), capacity)}
}

// Allow reports whether one token is available and consumes it.
func (tb *TokenBucket) Allow() bool {
	return tb.limiter.Allow()
}
