// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/orgpulse/internal/domain/model"
	"github.com/ericfisherdev/orgpulse/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh       *gh.Client
	pageSize int
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// Retry and backoff for transient failures live in this stack, not in the
// aggregation pipeline above it.
func NewClient(token string, pageSize int) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:       client,
		pageSize: pageSize,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, pageSize int) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:       client,
		pageSize: pageSize,
	}, nil
}

// CountRepositories returns the organization's public repository count.
// Fast path: request a single item per page and read the last-page number
// from the Link header, which equals the total count. When no Link header is
// present (everything fits on one page) it falls back to fetching one full
// page and counting directly.
func (c *Client) CountRepositories(ctx context.Context, org string) (int, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: gh.ListOptions{PerPage: 1},
	}

	_, resp, err := c.gh.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return 0, mapError(err, "organization "+org)
	}

	logRateLimit(resp, org+"/repos#count", 1, 1)

	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}

	// No Link header: the listing fits on a single page.
	opts.ListOptions.PerPage = c.pageSize
	repos, resp, err := c.gh.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return 0, mapError(err, "organization "+org)
	}

	logRateLimit(resp, org+"/repos#count", 1, len(repos))

	return len(repos), nil
}

// ListRepositories retrieves repository snapshots for the organization.
// It pages through the listing until the Link header reports no next page or
// the cap is reached; the final page is truncated so the total never exceeds
// max. A failed page is fatal for the whole fetch.
func (c *Client) ListRepositories(ctx context.Context, org string, max int) ([]model.Repository, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: gh.ListOptions{PerPage: c.pageSize},
	}

	var all []model.Repository

	for {
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, mapError(err, "organization "+org)
		}

		logRateLimit(resp, org+"/repos", opts.Page, len(repos))

		for _, repo := range repos {
			all = append(all, mapRepository(repo))
			if max > 0 && len(all) == max {
				return all, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListContributors retrieves a repository's contributors with their
// contribution counts, paging until exhaustion.
func (c *Client) ListContributors(ctx context.Context, owner, repo string) ([]model.RepoContributor, error) {
	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: c.pageSize},
	}

	var all []model.RepoContributor

	for {
		contributors, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapError(err, fmt.Sprintf("contributors of %s/%s", owner, repo))
		}

		logRateLimit(resp, owner+"/"+repo+"/contributors", opts.Page, len(contributors))

		for _, contributor := range contributors {
			// Anonymous entries have no login and cannot be deduplicated
			// against a membership set.
			if contributor.GetLogin() == "" {
				continue
			}
			all = append(all, model.RepoContributor{
				Login:         contributor.GetLogin(),
				Contributions: contributor.GetContributions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListMembers retrieves the organization's member logins. Unlike the other
// listings this one is best-effort: membership only refines classification,
// so a failed page logs a warning and returns whatever was collected.
func (c *Client) ListMembers(ctx context.Context, org string) ([]string, error) {
	opts := &gh.ListMembersOptions{
		ListOptions: gh.ListOptions{PerPage: c.pageSize},
	}

	var logins []string

	for {
		members, resp, err := c.gh.Organizations.ListMembers(ctx, org, opts)
		if err != nil {
			slog.Warn("member listing stopped early, classification degrades to external-only",
				"org", org,
				"page", opts.Page,
				"collected", len(logins),
				"error", err,
			)
			return logins, nil
		}

		logRateLimit(resp, org+"/members", opts.Page, len(members))

		for _, member := range members {
			if login := member.GetLogin(); login != "" {
				logins = append(logins, login)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return logins, nil
}

// FollowerCount returns the follower count for a single user.
func (c *Client) FollowerCount(ctx context.Context, login string) (int, error) {
	user, resp, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		return 0, mapError(err, "user "+login)
	}

	logRateLimit(resp, login+"/followers", 0, 1)

	return user.GetFollowers(), nil
}

// mapRepository converts a go-github Repository to a domain model snapshot.
// It uses GetXxx() helpers exclusively to avoid nil pointer panics; a missing
// pushed/updated timestamp stays the zero value and reads as "never updated".
func mapRepository(repo *gh.Repository) model.Repository {
	return model.Repository{
		Name:       repo.GetName(),
		FullName:   repo.GetFullName(),
		Stars:      repo.GetStargazersCount(),
		Forks:      repo.GetForksCount(),
		Watchers:   repo.GetWatchersCount(),
		OpenIssues: repo.GetOpenIssuesCount(),
		Language:   repo.GetLanguage(),
		UpdatedAt:  repo.GetUpdatedAt().Time,
		Archived:   repo.GetArchived(),
		Fork:       repo.GetFork(),
		HTMLURL:    repo.GetHTMLURL(),
	}
}

// mapError translates go-github error types into the domain error taxonomy.
// Transient failures (5xx, network) pass through untyped; the transport stack
// has already exhausted its retries by the time they surface here.
func mapError(err error, resource string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &model.RateLimitError{
			Remaining: rateLimitErr.Rate.Remaining,
			ResetAt:   rateLimitErr.Rate.Reset.Time,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now()
		if abuseErr.RetryAfter != nil {
			resetAt = resetAt.Add(*abuseErr.RetryAfter)
		}
		return &model.RateLimitError{ResetAt: resetAt}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return &model.NotFoundError{Resource: resource}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &model.AuthError{StatusCode: respErr.Response.StatusCode}
		}
	}

	return err
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
