package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertboard_requests_total",
			Help: "Total number of API requests handled",
		},
		[]string{"endpoint", "status"},
	)

	// Rate limiting metrics. Deliberately unlabeled: identities are
	// client IPs, an unbounded label value set.
	RateLimitDenials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertboard_rate_limit_denials_total",
			Help: "Total number of requests denied by the write rate limiter",
		},
	)

	// Upstream (document store) metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alertboard_search_duration_seconds",
			Help:    "Duration of alert search round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	UpstreamErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertboard_upstream_errors_total",
			Help: "Total number of document store failures after retry exhaustion",
		},
	)

	// Live stream metrics
	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alertboard_stream_subscribers",
			Help: "Number of currently connected live stream subscribers",
		},
	)

	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertboard_broadcasts_total",
			Help: "Total number of alert events fanned out to subscribers",
		},
	)

	BroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertboard_broadcast_drops_total",
			Help: "Total number of events dropped for slow or gone subscribers",
		},
	)
)
