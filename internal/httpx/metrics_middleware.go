package httpx

import (
	"net/http"
	"strconv"
	"time"

	"bookcomments/internal/platform/metrics"
)

// MetricsMiddleware records request counts and latencies. It must wrap the
// ServeMux directly so the matched pattern is visible on the request once
// the mux returns.
func MetricsMiddleware(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
