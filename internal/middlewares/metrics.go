package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver records per-route request outcomes.
type RequestObserver interface {
	ObserveRequest(route, method, status string, seconds float64)
}

// MetricsMiddleware reports every request by its chi route pattern.
func MetricsMiddleware(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			observer.ObserveRequest(route, r.Method, strconv.Itoa(rw.statusCode), time.Since(start).Seconds())
		})
	}
}
