// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teamsizer/sizeup/internal/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

// normalizeEndpoint collapses task and session ids so the cardinality of the
// endpoint label stays bounded.
func normalizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/tasks/"):
		rest := strings.TrimPrefix(path, "/api/tasks/")
		if rest == "recent" || rest == "predict" {
			return path
		}
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 2 {
			return "/api/tasks/:id/" + parts[1]
		}
		return "/api/tasks/:id"
	case strings.HasPrefix(path, "/api/sessions/"):
		parts := strings.SplitN(strings.TrimPrefix(path, "/api/sessions/"), "/", 2)
		if len(parts) == 2 {
			return "/api/sessions/:id/" + parts[1]
		}
		return "/api/sessions/:id"
	default:
		return path
	}
}
