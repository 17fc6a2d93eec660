// Package model contains the core domain types for organization metrics.
package model

import "time"

// Repository is an immutable snapshot of a repository's public counters,
// fetched once per orchestration run and only aggregated over.
type Repository struct {
	Name       string
	FullName   string
	Stars      int
	Forks      int
	Watchers   int
	OpenIssues int
	Language   string
	// UpdatedAt is the last push/update time. The zero value means the
	// repository has never been updated (treated as infinitely stale).
	UpdatedAt time.Time
	Archived  bool
	Fork      bool
	HTMLURL   string
}

// EverUpdated reports whether the repository carries a known update timestamp.
func (r Repository) EverUpdated() bool {
	return !r.UpdatedAt.IsZero()
}

// ScoredRepo pairs a repository snapshot with its computed activity score.
type ScoredRepo struct {
	Repository
	Score int
}
