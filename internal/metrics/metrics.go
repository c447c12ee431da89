package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correcteur_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// UpstreamDuration tracks upstream latency per mode.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "correcteur_upstream_duration_seconds",
		Help:    "Time spent waiting on the upstream completion API.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"mode"})

	// UpstreamErrors counts failed upstream calls by error kind.
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correcteur_upstream_errors_total",
		Help: "Upstream calls that failed, by error kind.",
	}, []string{"kind"})

	// InputChars tracks the distribution of input text lengths.
	InputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "correcteur_input_chars",
		Help:    "Number of characters in input text.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	// UpstreamAvailable is 1 when the upstream has credentials configured.
	UpstreamAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "correcteur_upstream_available",
		Help: "Whether the upstream completion API is configured (1) or not (0).",
	})
)
