package core

import (
	"math"
	"time"
)

// TokenBucket implements the token bucket rate limiting algorithm with
// continuous-time refill. Tokens accrue lazily: every consume attempt first
// credits the bucket for the time elapsed since the last computation, capped
// at capacity, then decides.
//
// TokenBucket is not safe for concurrent use; callers serialize access and
// supply the current time explicitly, which keeps the accounting testable.
type TokenBucket struct {
	capacity       float64   // Maximum number of tokens (burst size)
	tokens         float64   // Current available tokens
	refillRate     float64   // Tokens added per second
	lastRefillTime time.Time // Last time tokens were refilled
}

// NewTokenBucket creates a bucket with the given policy, starting full.
//
// Example: NewTokenBucket(Config{Capacity: 5, RefillRate: 0.5}, time.Now())
// allows a burst of 5 requests and then one request every 2 seconds.
func NewTokenBucket(cfg Config, now time.Time) (*TokenBucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &TokenBucket{
		capacity:       cfg.Capacity,
		tokens:         cfg.Capacity, // Start with full bucket
		refillRate:     cfg.RefillRate,
		lastRefillTime: now,
	}, nil
}

// refill credits tokens for the time elapsed since the last refill and caps
// the total at capacity. A clock that moved backward yields zero elapsed
// time; tokens are never subtracted here.
func (b *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefillTime).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(b.tokens+elapsed*b.refillRate, b.capacity)
	}
	b.lastRefillTime = now
}

// TryConsume refills the bucket to the given time, then attempts to consume
// cost tokens. If fewer than cost tokens are available the attempt is denied
// and the token count is left as the refill produced it.
func (b *TokenBucket) TryConsume(now time.Time, cost float64) Result {
	b.refill(now)

	if b.tokens >= cost {
		b.tokens -= cost
		return Result{
			Allowed:   true,
			Remaining: b.tokens,
			Limit:     b.capacity,
		}
	}

	res := Result{
		Allowed:   false,
		Remaining: b.tokens,
		Limit:     b.capacity,
	}
	if b.refillRate > 0 {
		secondsNeeded := (cost - b.tokens) / b.refillRate
		res.RetryAfter = time.Duration(secondsNeeded * float64(time.Second))
	}
	return res
}

// UpdateConfig replaces the bucket policy at runtime. The current token
// count is clamped to the new capacity, never reset to full, so charge
// accumulated against the old policy carries over. On validation failure
// the bucket is left untouched.
func (b *TokenBucket) UpdateConfig(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	b.capacity = cfg.Capacity
	b.refillRate = cfg.RefillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	return cfg, nil
}

// Snapshot refills the bucket to the given time and reports its state.
func (b *TokenBucket) Snapshot(now time.Time) Status {
	b.refill(now)
	return Status{
		Tokens:     b.tokens,
		Capacity:   b.capacity,
		RefillRate: b.refillRate,
	}
}
