package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPRecorder receives request measurements.
type HTTPRecorder interface {
	ObserveHTTP(method, path string, status int, d time.Duration)
	InFlight(delta int)
}

// Metrics returns a middleware that records HTTP metrics.
func Metrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec.InFlight(1)
			defer rec.InFlight(-1)

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			rec.ObserveHTTP(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *metricsRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return hijack(r.ResponseWriter)
}

const transactionsPrefix = "/api/v1/transactions/"

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/transactions/01ABC123 -> /api/v1/transactions/:id
func normalizePath(path string) string {
	if !strings.HasPrefix(path, transactionsPrefix) {
		return path
	}

	rest := path[len(transactionsPrefix):]
	if rest == "" || rest[0] == '/' {
		return path
	}

	suffix := ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		suffix = rest[i:]
	}
	return transactionsPrefix + ":id" + suffix
}
