package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "customer_service_http_requests_total",
		Help: "Total number of HTTP requests received.",
	}, []string{"method", "path", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "customer_service_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "code"})
)

// MetricsMiddleware labels by chi route pattern so path parameters do not
// explode cardinality.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				statusCode := ww.Status()
				if statusCode == 0 {
					statusCode = http.StatusOK
				}
				routePattern := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					routePattern = rctx.RoutePattern()
				}
				code := strconv.Itoa(statusCode)

				httpRequestsTotal.WithLabelValues(r.Method, routePattern, code).Inc()
				httpRequestDuration.WithLabelValues(r.Method, routePattern, code).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
