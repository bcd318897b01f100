package server

import "github.com/prometheus/client_golang/prometheus"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdesk_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdesk_turns_total",
			Help: "Conversation turns by outcome.",
		},
		[]string{"outcome"},
	)
	turnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "salesdesk_turn_duration_seconds",
			Help:    "Time spent generating one answer.",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesdesk_active_sessions",
			Help: "Number of live chat sessions.",
		},
	)
)

// Turn outcomes.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeBusy  = "busy"
	outcomeEmpty = "empty"
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, turnsTotal, turnDuration, activeSessions)
}
