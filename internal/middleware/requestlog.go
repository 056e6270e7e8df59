package middleware

import (
	"net/http"
	"strconv"
	"time"

	"invertebratorium/internal/platform/logger"
	"invertebratorium/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog loguea cada request y alimenta los contadores prometheus.
func RequestLog(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)

			// el pattern recién está resuelto después de servir
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			if m != nil {
				status := strconv.Itoa(ww.Status())
				m.Requests.WithLabelValues(r.Method, route, status).Inc()
				m.Duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}

			log.Info("request", map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"elapsed_ms": elapsed.Milliseconds(),
				"request_id": chimw.GetReqID(r.Context()),
			})
		})
	}
}
