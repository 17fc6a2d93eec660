package model

import "time"

// RepoCount is the cheapest metric: how many public repositories the
// organization has, resolved from pagination metadata where possible.
type RepoCount struct {
	Org          string    `json:"org"`
	Repositories int       `json:"repositories"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// RepoStats aggregates counters over the full (capped) repository listing.
type RepoStats struct {
	Org             string         `json:"org"`
	TotalRepos      int            `json:"total_repos"`
	TotalStars      int            `json:"total_stars"`
	TotalForks      int            `json:"total_forks"`
	TotalWatchers   int            `json:"total_watchers"`
	TotalOpenIssues int            `json:"total_open_issues"`
	ArchivedRepos   int            `json:"archived_repos"`
	Languages       map[string]int `json:"languages"`
	TopByActivity   []ScoredRepo   `json:"top_by_activity"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// ContributorStats partitions the deduplicated contributor set into
// organization members and external contributors.
type ContributorStats struct {
	Org          string    `json:"org"`
	Total        int       `json:"total"`
	Internal     int       `json:"internal"`
	External     int       `json:"external"`
	SampledRepos int       `json:"sampled_repos"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// TopContributors ranks the deduplicated contributor set by aggregate
// contribution count.
type TopContributors struct {
	Org          string        `json:"org"`
	Contributors []Contributor `json:"contributors"`
	SampledRepos int           `json:"sampled_repos"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// MemberReach is one member's follower count.
type MemberReach struct {
	Login     string `json:"login"`
	Followers int    `json:"followers"`
}

// FollowerReach sums follower counts across organization members.
type FollowerReach struct {
	Org            string        `json:"org"`
	TotalFollowers int           `json:"total_followers"`
	Members        []MemberReach `json:"members"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// DependentsReport aggregates scraped dependent counts over the sampled
// repository subset, sorted by dependent count descending.
type DependentsReport struct {
	Org             string             `json:"org"`
	TotalDependents int                `json:"total_dependents"`
	Repos           []DependencyRecord `json:"repos"`
	SampledRepos    int                `json:"sampled_repos"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// OrgInsights is the composite detailed view: aggregate stats, health
// classification, and summary statistics over the repository set.
type OrgInsights struct {
	Org         string       `json:"org"`
	Stats       RepoStats    `json:"stats"`
	Health      HealthReport `json:"health"`
	MeanStars   float64      `json:"mean_stars"`
	MedianStars float64      `json:"median_stars"`
	GeneratedAt time.Time    `json:"generated_at"`
}
