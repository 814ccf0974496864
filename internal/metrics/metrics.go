package metrics

import (
	"net/http"
	"strconv"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datingclock",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "datingclock",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	matchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datingclock",
		Name:      "match_attempts_total",
		Help:      "Total number of match attempts by outcome",
	}, []string{"outcome"})

	wsConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "datingclock",
		Name:      "ws_connections",
		Help:      "Current number of WebSocket connections by role",
	}, []string{"role"})
)

// ObserveMatchAttempt records one match attempt outcome ("success" or an
// error kind)
func ObserveMatchAttempt(outcome string) {
	matchAttempts.WithLabelValues(outcome).Inc()
}

// WSConnected increments the connection gauge for a role
func WSConnected(role string) {
	wsConnections.WithLabelValues(role).Inc()
}

// WSDisconnected decrements the connection gauge for a role
func WSDisconnected(role string) {
	wsConnections.WithLabelValues(role).Dec()
}

// Middleware records request counts and latency
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.Status()),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the Prometheus metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
