// Package driven defines the outbound port interfaces implemented by adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/orgpulse/internal/domain/model"
)

// GitHubClient is the port for fetching organization data from the GitHub API.
type GitHubClient interface {
	// CountRepositories returns the number of public repositories in the
	// organization, using pagination metadata as a fast path where available.
	CountRepositories(ctx context.Context, org string) (int, error)

	// ListRepositories returns up to max repository snapshots for the
	// organization. A max of zero or less means no cap.
	ListRepositories(ctx context.Context, org string, max int) ([]model.Repository, error)

	// ListContributors returns the contributors of a single repository with
	// their per-repository contribution counts.
	ListContributors(ctx context.Context, owner, repo string) ([]model.RepoContributor, error)

	// ListMembers returns the organization's member logins. The listing is
	// best-effort: a failed page stops pagination and returns what was
	// already collected rather than an error.
	ListMembers(ctx context.Context, org string) ([]string, error)

	// FollowerCount returns the follower count of a single user.
	FollowerCount(ctx context.Context, login string) (int, error)
}
