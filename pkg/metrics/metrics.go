// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpdatesTotal tracks inbound Telegram updates by kind.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total inbound Telegram updates processed",
		},
		[]string{"kind"},
	)

	// CommandsTotal tracks bot commands by name and outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total bot commands handled",
		},
		[]string{"command", "outcome"},
	)

	// SendsTotal tracks outbound Telegram sends.
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_sends_total",
			Help: "Total outbound Telegram messages",
		},
		[]string{"status"},
	)

	// SendDuration tracks outbound send latency including retries.
	SendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_send_duration_seconds",
			Help:    "Outbound Telegram send duration including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		},
	)

	// SessionsActive tracks in-flight conversation sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_sessions_active",
			Help: "Number of in-flight conversation sessions",
		},
	)

	// SessionsExpired tracks sessions removed by the expiry sweep.
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_sessions_expired_total",
			Help: "Sessions removed by the inactivity sweep",
		},
	)

	// RateLimited tracks commands rejected by the per-user limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limited_total",
			Help: "Commands rejected by the per-user rate limiter",
		},
	)

	// SubmissionsTotal tracks finalized inventory submissions.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_submissions_total",
			Help: "Finalized inventory submissions",
		},
		[]string{"location", "entry_type"},
	)

	// RequestLinesTotal tracks generated purchase request lines.
	RequestLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_request_lines_total",
			Help: "Purchase request lines generated",
		},
		[]string{"location"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSend records an outbound Telegram send attempt result.
func RecordSend(status string, duration float64) {
	SendsTotal.WithLabelValues(status).Inc()
	SendDuration.Observe(duration)
}
