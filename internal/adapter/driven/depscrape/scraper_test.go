package depscrape_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/depscrape"
)

func newTestScraper(t *testing.T, handler http.Handler) *depscrape.Scraper {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return depscrape.NewWithBaseURL(server.Client(), server.URL)
}

func dependentsHTML(count string) string {
	return fmt.Sprintf(`<html><body>
<div class="table-list-header-toggle">
  <a class="btn-link selected" href="/acme/widget/network/dependents?dependent_type=REPOSITORY">
    %s
    Repositories
  </a>
</body></html>`, count)
}

func TestEstimateDependents_ParsesCount(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/acme/widget/network/dependents", r.URL.Path)
		_, _ = w.Write([]byte(dependentsHTML("1,234")))
	}))

	count, err := scraper.EstimateDependents(context.Background(), "acme", "widget")

	require.NoError(t, err)
	assert.Equal(t, 1234, count)
}

func TestEstimateDependents_PatternMissingFailsSoft(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing relevant here</body></html>"))
	}))

	count, err := scraper.EstimateDependents(context.Background(), "acme", "widget")

	require.NoError(t, err, "an unmatched pattern is zero dependents, not an error")
	assert.Equal(t, 0, count)
}

func TestEstimateDependents_NotFoundFailsSoft(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	count, err := scraper.EstimateDependents(context.Background(), "acme", "widget")

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEstimateDependents_RetriesTransientFailures(t *testing.T) {
	var calls int
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(dependentsHTML("42")))
	}))

	count, err := scraper.EstimateDependents(context.Background(), "acme", "widget")

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.Equal(t, 2, calls)
}

func TestEstimateDependents_ExhaustedRetriesSurfaceError(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := scraper.EstimateDependents(context.Background(), "acme", "widget")
	assert.Error(t, err)
}

func TestEstimateDependents_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(dependentsHTML("42")))
	}))

	_, err := scraper.EstimateDependents(ctx, "acme", "widget")
	assert.ErrorIs(t, err, context.Canceled)
}
