// Package server composes the middleware chain and route table.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsglass/alertboard/internal/handlers"
	"github.com/opsglass/alertboard/internal/middleware"
	"github.com/opsglass/alertboard/internal/ratelimit"
)

// Config holds dependencies needed to configure routes.
type Config struct {
	Handler        *handlers.Handler
	APIKey         string
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
}

// NewRouter constructs a ServeMux with the dashboard routes registered.
// Mutating endpoints pass through key check then rate check, in that
// order, so a denied admission never produces a side effect and an
// unauthenticated request never consumes quota. Read endpoints skip
// both.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	h := cfg.Handler
	guard := func(next http.HandlerFunc) http.Handler {
		return middleware.APIKey(cfg.APIKey)(middleware.RateLimit(cfg.Limiter)(next))
	}

	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /alerts", h.Alerts)
	mux.HandleFunc("GET /blocked", h.Blocked)
	mux.HandleFunc("GET /stream", h.Stream)

	mux.Handle("POST /block-ip", guard(h.BlockIP))
	mux.Handle("POST /alert", guard(h.IngestAlert))

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Request-ID"},
	})

	return middleware.RequestID(cors(mux))
}
