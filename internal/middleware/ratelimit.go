package middleware

import (
	"log/slog"
	"net/http"

	"github.com/opsglass/alertboard/internal/httputil"
	"github.com/opsglass/alertboard/internal/ratelimit"
)

// RateLimit gates mutating endpoints behind the write rate limiter,
// partitioned by client address. A denied admission never reaches the
// wrapped handler. Read traffic is routed around this middleware
// entirely.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := httputil.GetClientIP(r)
			if identity == "" {
				identity = "unknown"
			}

			allowed, err := limiter.Allow(r.Context(), identity)
			if err != nil {
				slog.Warn("rate limit check failed",
					slog.String("identity", identity),
					slog.String("error", err.Error()))
				httputil.WriteError(w, http.StatusInternalServerError, "rate_limit_check_failed")
				return
			}
			if !allowed {
				httputil.WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
