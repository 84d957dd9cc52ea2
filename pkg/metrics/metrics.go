// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the process-wide collector registry
	Registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	paymentsConfirmedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tontine_payments_confirmed_total",
			Help: "Payments moved to PAID, by origin.",
		},
		[]string{"origin"},
	)

	paymentsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tontine_payments_failed_total",
			Help: "Payments moved to FAILED.",
		},
	)

	roundsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tontine_rounds_completed_total",
			Help: "Rounds moved to COMPLETED.",
		},
	)

	roundsOpenedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tontine_rounds_opened_total",
			Help: "Rounds moved to COLLECTING.",
		},
	)

	notificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tontine_notifications_created_total",
			Help: "Notifications materialised, by type.",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		paymentsConfirmedTotal,
		paymentsFailedTotal,
		roundsCompletedTotal,
		roundsOpenedTotal,
		notificationsCreatedTotal,
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func PaymentConfirmed(origin string) {
	paymentsConfirmedTotal.WithLabelValues(origin).Inc()
}

func PaymentFailed() {
	paymentsFailedTotal.Inc()
}

func RoundCompleted() {
	roundsCompletedTotal.Inc()
}

func RoundsOpened(n int) {
	roundsOpenedTotal.Add(float64(n))
}

func NotificationCreated(notificationType string) {
	notificationsCreatedTotal.WithLabelValues(notificationType).Inc()
}
