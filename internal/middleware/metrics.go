package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/zlovtnik/homeswift/internal/metrics"
)

// unmatchedRoute labels requests the mux did not route, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route pattern.
// It must wrap the mux directly so r.Pattern is populated after routing.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
