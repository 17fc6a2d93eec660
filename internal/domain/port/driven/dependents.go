package driven

import "context"

// DependentsEstimator is the port for best-effort dependent counting. The
// current implementation scrapes a non-contractual HTML page; the narrow
// interface keeps callers insulated so a structured source can replace it.
type DependentsEstimator interface {
	// EstimateDependents returns the estimated number of repositories
	// depending on owner/repo. Implementations fail soft: an unparseable
	// page yields zero, not an error.
	EstimateDependents(ctx context.Context, owner, repo string) (int, error)
}
