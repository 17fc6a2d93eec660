package httphandler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/memcache"
	httphandler "github.com/ericfisherdev/orgpulse/internal/adapter/driving/http"
	"github.com/ericfisherdev/orgpulse/internal/application"
	"github.com/ericfisherdev/orgpulse/internal/domain/model"
)

// stubGitHub is a minimal GitHubClient stub for handler tests.
type stubGitHub struct {
	repos []model.Repository
	err   error
	calls atomic.Int64
}

func (s *stubGitHub) CountRepositories(context.Context, string) (int, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return len(s.repos), nil
}

func (s *stubGitHub) ListRepositories(context.Context, string, int) ([]model.Repository, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.repos, nil
}

func (s *stubGitHub) ListContributors(context.Context, string, string) ([]model.RepoContributor, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubGitHub) ListMembers(context.Context, string) ([]string, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubGitHub) FollowerCount(context.Context, string) (int, error) {
	s.calls.Add(1)
	return 0, nil
}

type stubDeps struct{}

func (stubDeps) EstimateDependents(context.Context, string, string) (int, error) {
	return 0, nil
}

func newTestServer(t *testing.T, gh *stubGitHub) *httptest.Server {
	t.Helper()

	svc := application.NewMetricsService(gh, memcache.New(time.Minute), stubDeps{}, application.Options{
		Org:         "acme",
		Concurrency: 2,
		Weights:     application.ScoreWeights{Stars: 10, Forks: 5, Issues: 2, RecentBonus: 1000, RecentWindow: 30 * 24 * time.Hour},
		Thresholds:  application.HealthThresholds{StaleDays: 180, AttentionDays: 30},
	})

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	handler := httphandler.NewServeMux(httphandler.NewHandler(svc, logger), logger)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// testWriter routes handler logs through the test log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func get(t *testing.T, server *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := server.Client().Get(server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var buf [4096]byte
	n, _ := resp.Body.Read(buf[:])
	return resp, buf[:n]
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubGitHub{})

	resp, body := get(t, server, "/api/v1/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestRepositoryCountEndpoint(t *testing.T) {
	gh := &stubGitHub{repos: []model.Repository{{Name: "a"}, {Name: "b"}}}
	server := newTestServer(t, gh)

	resp, body := get(t, server, "/api/v1/metrics/repos/count")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Org          string `json:"org"`
		Repositories int    `json:"repositories"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "acme", result.Org)
	assert.Equal(t, 2, result.Repositories)
}

func TestRepositoryCountEndpoint_CachesAcrossRequests(t *testing.T) {
	gh := &stubGitHub{repos: []model.Repository{{Name: "a"}}}
	server := newTestServer(t, gh)

	get(t, server, "/api/v1/metrics/repos/count")
	afterMiss := gh.calls.Load()
	get(t, server, "/api/v1/metrics/repos/count")

	assert.Equal(t, afterMiss, gh.calls.Load(), "second request within TTL must be served from cache")

	get(t, server, "/api/v1/metrics/repos/count?refresh=1")
	assert.Greater(t, gh.calls.Load(), afterMiss, "refresh=1 must bypass the cache")
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &model.NotFoundError{Resource: "organization acme"}, http.StatusNotFound},
		{"auth", &model.AuthError{StatusCode: 401}, http.StatusUnauthorized},
		{"rate limit", &model.RateLimitError{ResetAt: time.Now().Add(time.Hour)}, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubGitHub{err: tt.err})

			resp, body := get(t, server, "/api/v1/metrics/repos/stats")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, string(body), `"metric":"repo_stats"`, "error body should name the failing metric")
		})
	}
}

func TestRateLimitResponseCarriesRetryAfter(t *testing.T) {
	server := newTestServer(t, &stubGitHub{err: &model.RateLimitError{ResetAt: time.Now().Add(time.Hour)}})

	resp, body := get(t, server, "/api/v1/metrics/repos/stats")

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Contains(t, string(body), "rate limit")
}
