package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mwpriority",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, path, and status code.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mwpriority",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mwpriority",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mwpriority",
		Name:      "ratelimit_rejections_total",
		Help:      "Total requests rejected by the rate limiter.",
	})

	PriorityEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mwpriority",
		Subsystem: "priority",
		Name:      "edits_total",
		Help:      "Priority list edits applied at startup by op and result (ok, not_found, invalid).",
	}, []string{"op", "result"})

	PriorityPosition = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mwpriority",
		Subsystem: "priority",
		Name:      "position",
		Help:      "Index of each middleware in the effective priority list (-1 when unranked).",
	}, []string{"middleware"})
)

// RouteLabel maps a request path to the route that serves it, for use as a
// low-cardinality metric label or span name.
func RouteLabel(path string) string {
	switch path {
	case "/v1/priority", "/v1/trace", "/health", "/health/ready",
		"/version", "/metrics", "/openapi.yaml":
		return path
	}
	if strings.HasPrefix(path, "/v1/priority/") {
		return "/v1/priority/{name}"
	}
	return "/other"
}

// Metrics returns middleware that records Prometheus metrics for every request.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := RouteLabel(r.URL.Path)

			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			status := strconv.Itoa(sw.status)
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
