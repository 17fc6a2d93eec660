package httphandler

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// recorder captures what a handler wrote so the request log can report it.
// The status/bytes/elapsed triple is what distinguishes a cache hit (tiny,
// microseconds) from a miss that fanned out to the upstream API.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// withRequestLog logs one line per request after the handler finishes,
// including whether the caller forced a cache bypass.
func withRequestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: w}

		next.ServeHTTP(rec, req)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		logger.Info("request",
			"method", req.Method,
			"path", req.URL.Path,
			"refresh", refreshRequested(req),
			"status", status,
			"bytes", rec.bytes,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

// withRecovery converts a handler panic into a 500 instead of tearing down
// the connection, keeping the stack in the log.
func withRecovery(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("handler panicked",
					"method", req.Method,
					"path", req.URL.Path,
					"panic", v,
					"stack", string(debug.Stack()),
				)
				writeAPIError(w, http.StatusInternalServerError, "", "internal server error")
			}
		}()

		next.ServeHTTP(w, req)
	})
}
