// Package httphandler is the HTTP driving adapter serving the metrics API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/orgpulse/internal/application"
	"github.com/ericfisherdev/orgpulse/internal/domain/model"
)

// Handler serves the organization metrics REST API.
type Handler struct {
	svc    *application.MetricsService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc *application.MetricsService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/metrics/repos/count", h.RepositoryCount)
	mux.HandleFunc("GET /api/v1/metrics/repos/stats", h.RepositoryStats)
	mux.HandleFunc("GET /api/v1/metrics/contributors", h.ContributorStats)
	mux.HandleFunc("GET /api/v1/metrics/contributors/top", h.TopContributors)
	mux.HandleFunc("GET /api/v1/metrics/reach", h.FollowerReach)
	mux.HandleFunc("GET /api/v1/metrics/dependents", h.Dependents)
	mux.HandleFunc("GET /api/v1/metrics/insights", h.Insights)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := withRecovery(logger, mux)
	wrapped = withRequestLog(logger, wrapped)

	return wrapped
}

// apiError is the error response body. Metric names which orchestrator
// failed; it is empty for failures outside any metric (panics, bad routes).
type apiError struct {
	Error  string `json:"error"`
	Metric string `json:"metric,omitempty"`
}

// writeJSON writes v with the given status. Marshaling happens before the
// header goes out so an encoding failure can still turn into a clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encoding response failed"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeAPIError(w http.ResponseWriter, status int, metric, message string) {
	writeJSON(w, status, apiError{Error: message, Metric: metric})
}

// refreshRequested reports whether the caller asked to bypass the cache.
func refreshRequested(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

// serveMetric runs one orchestrator and writes its result or a mapped error.
func serveMetric[T any](h *Handler, w http.ResponseWriter, r *http.Request, metric string, fetch func(ctx context.Context, refresh bool) (T, error)) {
	result, err := fetch(r.Context(), refreshRequested(r))
	if err != nil {
		h.writeMetricError(w, metric, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeMetricError maps the domain error taxonomy onto HTTP status codes,
// keeping enough detail in the body for the caller to act on.
func (h *Handler) writeMetricError(w http.ResponseWriter, metric string, err error) {
	h.logger.Error("metric request failed", "metric", metric, "error", err)

	var rateLimitErr *model.RateLimitError
	switch {
	case model.IsNotFound(err):
		writeAPIError(w, http.StatusNotFound, metric, err.Error())
	case model.IsAuth(err):
		writeAPIError(w, http.StatusUnauthorized, metric, err.Error())
	case errors.As(err, &rateLimitErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(rateLimitErr.ResetAt).Seconds())))
		writeAPIError(w, http.StatusTooManyRequests, metric, rateLimitErr.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeAPIError(w, http.StatusServiceUnavailable, metric, "request canceled")
	default:
		writeAPIError(w, http.StatusBadGateway, metric, "upstream error")
	}
}

// RepositoryCount returns the organization's public repository count.
func (h *Handler) RepositoryCount(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "repo_count", h.svc.RepositoryCount)
}

// RepositoryStats returns aggregate repository counters and top repositories.
func (h *Handler) RepositoryStats(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "repo_stats", h.svc.RepositoryStats)
}

// ContributorStats returns internal/external contributor counts.
func (h *Handler) ContributorStats(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "contributor_stats", h.svc.ContributorStats)
}

// TopContributors returns the highest-contributing identities.
func (h *Handler) TopContributors(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "top_contributors", h.svc.TopContributors)
}

// FollowerReach returns summed follower counts across members.
func (h *Handler) FollowerReach(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "follower_reach", h.svc.FollowerReach)
}

// Dependents returns estimated dependent counts for sampled repositories.
func (h *Handler) Dependents(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "dependents", h.svc.Dependents)
}

// Insights returns the composite detailed organization view.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	serveMetric(h, w, r, "insights", h.svc.Insights)
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
