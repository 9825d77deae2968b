// Package middleware provides HTTP middleware for admission control and
// request logging.
package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/yourusername/floodgate/service"
)

// Admitter decides whether a request may proceed. Satisfied by
// *service.RateLimiterService.
type Admitter interface {
	CheckAdmission() service.Decision
}

// RateLimit wraps a handler with admission control. Every request consumes
// one token; denied requests get a 429 with standard rate limit headers and
// never reach the next handler.
func RateLimit(admitter Admitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := admitter.CheckAdmission()

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%.0f", decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%.0f", math.Floor(decision.Remaining)))

			if !decision.Allowed {
				if decision.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(decision.RetryAfter.Seconds())))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limit_exceeded",
					"message": "Rate limit exceeded. Try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
