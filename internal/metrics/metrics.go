// Package metrics provides Prometheus metrics for monitoring the estimation
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizeup_predictions_total",
			Help: "Total number of size predictions served",
		},
		[]string{"size"},
	)
	TasksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sizeup_tasks_created_total",
			Help: "Total number of tasks saved from accepted predictions",
		},
	)
	TasksImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sizeup_tasks_imported_total",
			Help: "Total number of tasks created through bulk import",
		},
	)
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizeup_votes_cast_total",
			Help: "Total number of votes cast",
		},
		[]string{"size"},
	)
	TasksFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizeup_tasks_finalized_total",
			Help: "Total number of tasks finalized",
		},
		[]string{"size"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizeup_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sizeup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	TasksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sizeup_tasks_total",
			Help: "Current number of stored tasks",
		},
	)
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sizeup_sessions_active",
			Help: "Current number of active estimation sessions",
		},
	)
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sizeup_websocket_clients",
			Help: "Number of currently connected WebSocket clients",
		},
	)
)

func RecordPrediction(size string) {
	PredictionsTotal.WithLabelValues(size).Inc()
}

func RecordTaskCreated() {
	TasksCreated.Inc()
}

func RecordTasksImported(count int) {
	TasksImported.Add(float64(count))
}

func RecordVote(size string) {
	VotesCast.WithLabelValues(size).Inc()
}

func RecordTaskFinalized(size string) {
	TasksFinalized.WithLabelValues(size).Inc()
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func UpdateTasksTotal(count int) {
	TasksTotal.Set(float64(count))
}

func UpdateActiveSessions(count int) {
	SessionsActive.Set(float64(count))
}

func UpdateWebSocketClients(count int) {
	WebSocketClients.Set(float64(count))
}
