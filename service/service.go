// Package service owns the single process-wide token bucket and serializes
// all access to it, so that refill, consume, and reconfiguration are each
// observed as indivisible by concurrent callers.
package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/floodgate/core"
)

// Recorder receives admission outcomes and applied config updates.
// Satisfied by *metrics.Metrics; a nil Recorder disables recording.
type Recorder interface {
	RecordAdmission(allowed bool)
	RecordConfigUpdate()
}

// Decision is the result of a single admission check.
type Decision struct {
	// Allowed indicates whether the request should be admitted
	Allowed bool

	// Remaining is the number of tokens left in the bucket
	Remaining float64

	// Limit is the bucket capacity (max burst)
	Limit float64

	// RetryAfter is how long until the next request would be admitted.
	// Zero when Allowed, and zero when the refill rate is zero.
	RetryAfter time.Duration
}

// RateLimiterService guards one TokenBucket with a mutex. Every operation
// that touches the bucket goes through that mutex, so no caller ever sees a
// partially refilled or partially reconfigured bucket.
type RateLimiterService struct {
	mu      sync.Mutex
	bucket  *core.TokenBucket
	clock   func() time.Time
	logger  *zap.Logger
	metrics Recorder
}

// Option configures a RateLimiterService.
type Option func(*RateLimiterService)

// WithClock replaces the time source. Used by tests to control elapsed time.
func WithClock(clock func() time.Time) Option {
	return func(s *RateLimiterService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a service owning a freshly filled bucket with the given policy.
func New(cfg core.Config, logger *zap.Logger, rec Recorder, opts ...Option) (*RateLimiterService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RateLimiterService{
		clock:   time.Now,
		logger:  logger,
		metrics: rec,
	}
	for _, opt := range opts {
		opt(s)
	}

	bucket, err := core.NewTokenBucket(cfg, s.clock())
	if err != nil {
		return nil, err
	}
	s.bucket = bucket

	logger.Info("rate limiter initialized",
		zap.Float64("capacity", cfg.Capacity),
		zap.Float64("refill_rate", cfg.RefillRate))
	return s, nil
}

// CheckAdmission consumes one token if available. Denial is a normal
// outcome, not an error; the caller maps it to a 429.
func (s *RateLimiterService) CheckAdmission() Decision {
	now := s.clock()

	s.mu.Lock()
	res := s.bucket.TryConsume(now, 1)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordAdmission(res.Allowed)
	}
	if !res.Allowed {
		s.logger.Debug("admission denied",
			zap.Duration("retry_after", res.RetryAfter))
	}

	return Decision{
		Allowed:    res.Allowed,
		Remaining:  res.Remaining,
		Limit:      res.Limit,
		RetryAfter: res.RetryAfter,
	}
}

// UpdateConfig replaces the bucket policy under the same lock as
// CheckAdmission, so updates and checks are totally ordered. A rejected
// update leaves the prior configuration authoritative.
func (s *RateLimiterService) UpdateConfig(capacity, refillRate float64) (core.Config, error) {
	cfg := core.Config{Capacity: capacity, RefillRate: refillRate}

	s.mu.Lock()
	applied, err := s.bucket.UpdateConfig(cfg)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("rejected rate limit update",
			zap.Float64("capacity", capacity),
			zap.Float64("refill_rate", refillRate),
			zap.Error(err))
		return core.Config{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordConfigUpdate()
	}
	s.logger.Info("rate limit updated",
		zap.Float64("capacity", applied.Capacity),
		zap.Float64("refill_rate", applied.RefillRate))
	return applied, nil
}

// Snapshot reports the current bucket state with the refill applied.
// Used by the metrics endpoint and the dashboard stream.
func (s *RateLimiterService) Snapshot() core.Status {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bucket.Snapshot(now)
}
