package middleware

import (
	"net/http"
	"time"

	"gamesales-api/internal/render"

	"github.com/go-chi/httprate"
)

// RateLimitConfig configures a global sliding-window limiter.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// RateLimitMiddleware enforces one request budget shared by all callers.
func RateLimitMiddleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.Key("global")),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			render.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}
