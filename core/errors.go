package core

import "errors"

var (
	// ErrNonPositiveCapacity is returned when a bucket capacity is zero or negative
	ErrNonPositiveCapacity = errors.New("bucket capacity must be positive")

	// ErrNegativeRefillRate is returned when a refill rate is negative
	ErrNegativeRefillRate = errors.New("refill rate must not be negative")
)
