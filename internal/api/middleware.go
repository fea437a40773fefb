package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps how often ideas can be generated. The local model
// serves one request at a time, so the limit is global rather than per client.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perMinute requests per minute with a burst of the
// same size. Zero disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// Limit rejects requests over the limit with 429
func (m *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !m.limiter.Allow() {
			slog.Warn("generation rate limited", "remote_addr", r.RemoteAddr)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate_limited", "too many generation requests, try again shortly")
			return
		}

		next.ServeHTTP(w, r)
	})
}
