package model

// HealthBucket is a coarse classification of a repository's maintenance state.
// Archived repositories are tallied separately and belong to no bucket.
type HealthBucket string

const (
	HealthHealthy        HealthBucket = "healthy"
	HealthNeedsAttention HealthBucket = "needs_attention"
	HealthAtRisk         HealthBucket = "at_risk"
)

// HealthReport is the per-run derived health view over all repository
// snapshots. It is recomputed every run and never stored beyond the cache.
type HealthReport struct {
	Healthy        int `json:"healthy"`
	NeedsAttention int `json:"needs_attention"`
	AtRisk         int `json:"at_risk"`
	Archived       int `json:"archived"`

	// StalePercent is AtRisk over all non-archived repositories, as a
	// percentage rounded to one decimal. Zero when there are no
	// non-archived repositories.
	StalePercent float64 `json:"stale_percent"`

	// NeedingAttention holds the top 5 repositories by open issue count.
	NeedingAttention []Repository `json:"needing_attention"`

	// AtRiskRepos holds the top 5 stalest repositories, oldest update
	// first; never-updated repositories rank as oldest.
	AtRiskRepos []Repository `json:"at_risk_repos"`
}
