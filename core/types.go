package core

import "time"

// Config defines the bucket policy
type Config struct {
	Capacity   float64 // Maximum tokens (burst size)
	RefillRate float64 // Tokens added per second
}

// Validate checks the policy constraints: capacity must be positive
// and refill rate must not be negative.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return ErrNonPositiveCapacity
	}
	if c.RefillRate < 0 {
		return ErrNegativeRefillRate
	}
	return nil
}

// Result contains the outcome of a single consume attempt
type Result struct {
	Allowed    bool          // Whether the request is allowed
	Remaining  float64       // Tokens remaining after this attempt
	Limit      float64       // Total capacity
	RetryAfter time.Duration // Time until the request would be allowed (0 if allowed)
}

// Status is a point-in-time view of the bucket after a refill
type Status struct {
	Tokens     float64 // Current tokens available
	Capacity   float64 // Maximum tokens
	RefillRate float64 // Tokens added per second
}
