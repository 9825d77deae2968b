package floodgate

import (
	"github.com/yourusername/floodgate/core"
	"github.com/yourusername/floodgate/service"
)

// Re-export main types for convenience
type (
	Config             = core.Config
	Decision           = service.Decision
	RateLimiterService = service.RateLimiterService
)

// NewRateLimiterService creates a new rate limiter service
var NewRateLimiterService = service.New
