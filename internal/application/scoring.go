package application

import (
	"math"
	"sort"
	"time"

	"github.com/ericfisherdev/orgpulse/internal/domain/model"
)

// ScoreWeights holds the activity scoring constants.
type ScoreWeights struct {
	Stars        int
	Forks        int
	Issues       int
	RecentBonus  int
	RecentWindow time.Duration
}

// HealthThresholds holds the health classification constants, in days.
type HealthThresholds struct {
	StaleDays     int
	AttentionDays int
}

const (
	attentionIssueRatio = 0.5
	attentionOpenIssues = 50
	topListSize         = 5
)

// ActivityScore computes the synthetic popularity/recency ranking score.
// The recency bonus is added before the archival penalty, so an archived
// repository's whole score, bonus included, is divided by 10 (integer
// division): archival always depresses rank, even for a historically popular
// repository.
func ActivityScore(repo model.Repository, w ScoreWeights, now time.Time) int {
	score := repo.Stars*w.Stars + repo.Forks*w.Forks + repo.OpenIssues*w.Issues

	if repo.EverUpdated() && now.Sub(repo.UpdatedAt) <= w.RecentWindow {
		score += w.RecentBonus
	}

	if repo.Archived {
		score /= 10
	}

	return score
}

// TopByActivity returns the k highest-scoring repositories, descending.
// Ties keep input order.
func TopByActivity(repos []model.Repository, w ScoreWeights, now time.Time, k int) []model.ScoredRepo {
	scored := make([]model.ScoredRepo, 0, len(repos))
	for _, repo := range repos {
		scored = append(scored, model.ScoredRepo{
			Repository: repo,
			Score:      ActivityScore(repo, w, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}

	return scored
}

// daysSinceUpdate returns whole days since the repository's last update.
// Callers handle never-updated repositories before reaching for this.
func daysSinceUpdate(repo model.Repository, now time.Time) int {
	return int(now.Sub(repo.UpdatedAt).Hours() / 24)
}

// issueRatio is open issues over stars, zero when the repository has no stars.
func issueRatio(repo model.Repository) float64 {
	if repo.Stars == 0 {
		return 0
	}
	return float64(repo.OpenIssues) / float64(repo.Stars)
}

// ClassifyHealth buckets a non-archived repository by staleness and issue
// pressure. A repository with no known update timestamp is at risk outright.
// Callers tally archived repositories separately.
func ClassifyHealth(repo model.Repository, t HealthThresholds, now time.Time) model.HealthBucket {
	if !repo.EverUpdated() {
		return model.HealthAtRisk
	}

	days := daysSinceUpdate(repo, now)

	if days >= t.StaleDays {
		return model.HealthAtRisk
	}

	if days >= t.AttentionDays || issueRatio(repo) > attentionIssueRatio || repo.OpenIssues > attentionOpenIssues {
		return model.HealthNeedsAttention
	}

	return model.HealthHealthy
}

// BuildHealthReport classifies every repository snapshot and derives the
// per-run health view: bucket tallies, the stale percentage, and the short
// lists of repositories needing a maintainer's eye.
func BuildHealthReport(repos []model.Repository, t HealthThresholds, now time.Time) model.HealthReport {
	report := model.HealthReport{}

	var needsAttention, atRisk []model.Repository

	for _, repo := range repos {
		if repo.Archived {
			report.Archived++
			continue
		}

		switch ClassifyHealth(repo, t, now) {
		case model.HealthAtRisk:
			report.AtRisk++
			atRisk = append(atRisk, repo)
		case model.HealthNeedsAttention:
			report.NeedsAttention++
			needsAttention = append(needsAttention, repo)
		case model.HealthHealthy:
			report.Healthy++
		}
	}

	nonArchived := report.Healthy + report.NeedsAttention + report.AtRisk
	if nonArchived > 0 {
		report.StalePercent = math.Round(float64(report.AtRisk)/float64(nonArchived)*1000) / 10
	}

	sort.SliceStable(needsAttention, func(i, j int) bool {
		return needsAttention[i].OpenIssues > needsAttention[j].OpenIssues
	})
	sort.SliceStable(atRisk, func(i, j int) bool {
		return staleness(atRisk[i], now) > staleness(atRisk[j], now)
	})

	report.NeedingAttention = truncate(needsAttention, topListSize)
	report.AtRiskRepos = truncate(atRisk, topListSize)

	return report
}

// staleness orders repositories oldest-update-first; never-updated ranks oldest.
func staleness(repo model.Repository, now time.Time) int {
	if !repo.EverUpdated() {
		return math.MaxInt
	}
	return daysSinceUpdate(repo, now)
}

func truncate(repos []model.Repository, n int) []model.Repository {
	if len(repos) > n {
		return repos[:n]
	}
	return repos
}
