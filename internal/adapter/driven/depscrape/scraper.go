// Package depscrape estimates dependent counts by scraping the dependents
// page of a repository. The page is not a contractual API: the whole adapter
// is best-effort and fails soft to zero rather than propagating parse errors.
package depscrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/ericfisherdev/orgpulse/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DependentsEstimator = (*Scraper)(nil)

const (
	maxAttempts   = 3
	initialDelay  = 500 * time.Millisecond
	maxDelay      = 5 * time.Second
	maxBodyBytes  = 2 << 20 // the count appears early in the page
	requestWindow = 15 * time.Second
)

// dependentsPattern matches the "<N> Repositories" fragment on the dependents
// page, with thousands separators.
var dependentsPattern = regexp.MustCompile(`([\d,]+)\s*\n?\s*Repositories`)

// Scraper implements the DependentsEstimator port against github.com HTML.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a Scraper against github.com.
func New() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: requestWindow},
		baseURL:    "https://github.com",
	}
}

// NewWithBaseURL creates a Scraper against a custom base URL. Intended for
// testing with an httptest server.
func NewWithBaseURL(httpClient *http.Client, baseURL string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// EstimateDependents fetches the dependents page and extracts the repository
// count. A missing page or an unmatched pattern yields (0, nil); transient
// fetch failures are retried with backoff and surface as an error only once
// exhausted, so the fan-out layer can isolate them.
func (s *Scraper) EstimateDependents(ctx context.Context, owner, repo string) (int, error) {
	pageURL := fmt.Sprintf("%s/%s/%s/network/dependents", s.baseURL, owner, repo)

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				// No dependents page for this repository.
				body = nil
				return nil
			case resp.StatusCode != http.StatusOK:
				return fmt.Errorf("dependents page for %s/%s returned status %d", owner, repo, resp.StatusCode)
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("fetching dependents page for %s/%s: %w", owner, repo, err)
	}

	count, ok := parseDependents(body)
	if !ok {
		slog.Debug("dependents pattern not found, treating as zero", "owner", owner, "repo", repo)
		return 0, nil
	}

	return count, nil
}

// parseDependents extracts the first "<N> Repositories" count from the page.
func parseDependents(body []byte) (int, bool) {
	match := dependentsPattern.FindSubmatch(body)
	if match == nil {
		return 0, false
	}

	raw := strings.ReplaceAll(string(match[1]), ",", "")
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return count, true
}
