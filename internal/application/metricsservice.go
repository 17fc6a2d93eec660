package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/ericfisherdev/orgpulse/internal/domain/model"
	"github.com/ericfisherdev/orgpulse/internal/domain/port/driven"
)

// Options configures the metrics pipeline.
type Options struct {
	Org             string
	Concurrency     int
	MaxRepos        int
	SampleRepos     int
	TopRepos        int
	TopContributors int
	Weights         ScoreWeights
	Thresholds      HealthThresholds
}

// MetricsService orchestrates the fetch-aggregate-cache pipeline. Every
// metric follows the same shape: check the cache, on a hit return with zero
// upstream calls, on a miss run the minimum fetch/collect/classify/score
// sequence, store the complete result, and return it. A failure on the miss
// path never writes a partial result to the cache.
type MetricsService struct {
	gh     driven.GitHubClient
	cache  driven.CacheStore
	deps   driven.DependentsEstimator
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewMetricsService creates a MetricsService with all required dependencies.
func NewMetricsService(gh driven.GitHubClient, cache driven.CacheStore, deps driven.DependentsEstimator, opts Options) *MetricsService {
	return &MetricsService{
		gh:     gh,
		cache:  cache,
		deps:   deps,
		opts:   opts,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// cached wraps a metric computation with the cache-aside pattern. refresh
// forces a miss. Concurrent misses on the same key compute redundantly; the
// store takes the last write, which is harmless for immutable results.
func cached[T any](s *MetricsService, key string, refresh bool, compute func() (T, error)) (T, error) {
	var zero T

	if !refresh {
		if v, ok := s.cache.Get(key); ok {
			if result, ok := v.(T); ok {
				s.logger.Debug("cache hit", "key", key)
				return result, nil
			}
		}
	}

	s.logger.Debug("cache miss", "key", key)

	result, err := compute()
	if err != nil {
		return zero, err
	}

	s.cache.Set(key, result)
	return result, nil
}

func (s *MetricsService) key(metric string) string {
	return metric + ":" + s.opts.Org
}

// RepositoryCount returns the organization's public repository count.
func (s *MetricsService) RepositoryCount(ctx context.Context, refresh bool) (model.RepoCount, error) {
	return cached(s, s.key("repo_count"), refresh, func() (model.RepoCount, error) {
		count, err := s.gh.CountRepositories(ctx, s.opts.Org)
		if err != nil {
			return model.RepoCount{}, fmt.Errorf("counting repositories for %s: %w", s.opts.Org, err)
		}

		return model.RepoCount{
			Org:          s.opts.Org,
			Repositories: count,
			GeneratedAt:  s.now(),
		}, nil
	})
}

// RepositoryStats returns aggregate counters over the (capped) repository
// listing, with the top repositories by activity score.
func (s *MetricsService) RepositoryStats(ctx context.Context, refresh bool) (model.RepoStats, error) {
	return cached(s, s.key("repo_stats"), refresh, func() (model.RepoStats, error) {
		repos, err := s.gh.ListRepositories(ctx, s.opts.Org, s.opts.MaxRepos)
		if err != nil {
			return model.RepoStats{}, fmt.Errorf("listing repositories for %s: %w", s.opts.Org, err)
		}

		return s.buildRepoStats(repos), nil
	})
}

func (s *MetricsService) buildRepoStats(repos []model.Repository) model.RepoStats {
	result := model.RepoStats{
		Org:        s.opts.Org,
		TotalRepos: len(repos),
		Languages:  make(map[string]int),
	}

	for _, repo := range repos {
		result.TotalStars += repo.Stars
		result.TotalForks += repo.Forks
		result.TotalWatchers += repo.Watchers
		result.TotalOpenIssues += repo.OpenIssues
		if repo.Archived {
			result.ArchivedRepos++
		}
		if repo.Language != "" {
			result.Languages[repo.Language]++
		}
	}

	result.TopByActivity = TopByActivity(repos, s.opts.Weights, s.now(), s.opts.TopRepos)
	result.GeneratedAt = s.now()

	return result
}

// ContributorStats returns internal/external contributor counts over the
// sampled repository subset, classified against the organization member set.
func (s *MetricsService) ContributorStats(ctx context.Context, refresh bool) (model.ContributorStats, error) {
	return cached(s, s.key("contributor_stats"), refresh, func() (model.ContributorStats, error) {
		contributors, sampled, err := s.collectContributors(ctx)
		if err != nil {
			return model.ContributorStats{}, err
		}

		internal, external := CountClassified(contributors)

		return model.ContributorStats{
			Org:          s.opts.Org,
			Total:        len(contributors),
			Internal:     internal,
			External:     external,
			SampledRepos: sampled,
			GeneratedAt:  s.now(),
		}, nil
	})
}

// TopContributors returns the highest-contributing identities across the
// sampled repository subset.
func (s *MetricsService) TopContributors(ctx context.Context, refresh bool) (model.TopContributors, error) {
	return cached(s, s.key("top_contributors"), refresh, func() (model.TopContributors, error) {
		contributors, sampled, err := s.collectContributors(ctx)
		if err != nil {
			return model.TopContributors{}, err
		}

		if n := s.opts.TopContributors; n > 0 && len(contributors) > n {
			contributors = contributors[:n]
		}

		return model.TopContributors{
			Org:          s.opts.Org,
			Contributors: contributors,
			SampledRepos: sampled,
			GeneratedAt:  s.now(),
		}, nil
	})
}

// collectContributors fans out over the sampled repositories, deduplicates
// contributor identities, and classifies them against the member set. The
// member set is fetched once per run, best-effort.
func (s *MetricsService) collectContributors(ctx context.Context) ([]model.Contributor, int, error) {
	repos, err := s.gh.ListRepositories(ctx, s.opts.Org, s.opts.MaxRepos)
	if err != nil {
		return nil, 0, fmt.Errorf("listing repositories for %s: %w", s.opts.Org, err)
	}

	sample := s.sample(repos)

	memberLogins, err := s.gh.ListMembers(ctx, s.opts.Org)
	if err != nil {
		// The port contract is best-effort, but guard anyway: without a
		// member set every contributor classifies as external.
		s.logger.Warn("member listing failed, classifying all contributors as external", "error", err)
		memberLogins = nil
	}
	members := NewMemberSet(memberLogins)

	set := NewContributorSet()

	failed, err := ForEach(ctx, "contributors", sample, s.opts.Concurrency, func(ctx context.Context, repo model.Repository) error {
		owner, name, err := splitFullName(repo.FullName)
		if err != nil {
			return err
		}

		contributors, err := s.gh.ListContributors(ctx, owner, name)
		if err != nil {
			return err
		}

		for _, c := range contributors {
			set.Add(c.Login, c.Contributions, repo.Name)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if failed > 0 {
		s.logger.Warn("contributor fan-out skipped repositories", "failed", failed, "sampled", len(sample))
	}

	return set.Contributors(members), len(sample), nil
}

// FollowerReach sums follower counts across organization members.
func (s *MetricsService) FollowerReach(ctx context.Context, refresh bool) (model.FollowerReach, error) {
	return cached(s, s.key("follower_reach"), refresh, func() (model.FollowerReach, error) {
		memberLogins, err := s.gh.ListMembers(ctx, s.opts.Org)
		if err != nil {
			return model.FollowerReach{}, fmt.Errorf("listing members for %s: %w", s.opts.Org, err)
		}

		var (
			mu      sync.Mutex
			members []model.MemberReach
			total   int
		)

		failed, err := ForEach(ctx, "followers", memberLogins, s.opts.Concurrency, func(ctx context.Context, login string) error {
			count, err := s.gh.FollowerCount(ctx, login)
			if err != nil {
				return err
			}

			mu.Lock()
			members = append(members, model.MemberReach{Login: login, Followers: count})
			total += count
			mu.Unlock()
			return nil
		})
		if err != nil {
			return model.FollowerReach{}, err
		}
		if failed > 0 {
			s.logger.Warn("follower fan-out skipped members", "failed", failed, "members", len(memberLogins))
		}

		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Followers > members[j].Followers
		})

		return model.FollowerReach{
			Org:            s.opts.Org,
			TotalFollowers: total,
			Members:        members,
			GeneratedAt:    s.now(),
		}, nil
	})
}

// Dependents estimates dependent counts for the sampled repository subset.
func (s *MetricsService) Dependents(ctx context.Context, refresh bool) (model.DependentsReport, error) {
	return cached(s, s.key("dependents"), refresh, func() (model.DependentsReport, error) {
		repos, err := s.gh.ListRepositories(ctx, s.opts.Org, s.opts.MaxRepos)
		if err != nil {
			return model.DependentsReport{}, fmt.Errorf("listing repositories for %s: %w", s.opts.Org, err)
		}

		sample := s.sample(repos)

		var (
			mu      sync.Mutex
			records []model.DependencyRecord
			total   int
		)

		failed, err := ForEach(ctx, "dependents", sample, s.opts.Concurrency, func(ctx context.Context, repo model.Repository) error {
			owner, name, err := splitFullName(repo.FullName)
			if err != nil {
				return err
			}

			count, err := s.deps.EstimateDependents(ctx, owner, name)
			if err != nil {
				return err
			}

			record := model.DependencyRecord{
				RepoName:   repo.Name,
				Dependents: count,
				Ecosystem:  model.InferEcosystem(repo.Name),
			}
			if record.Ecosystem == "Go" {
				record.Package = "github.com/" + repo.FullName
			}

			mu.Lock()
			records = append(records, record)
			total += count
			mu.Unlock()
			return nil
		})
		if err != nil {
			return model.DependentsReport{}, err
		}
		if failed > 0 {
			s.logger.Warn("dependents fan-out skipped repositories", "failed", failed, "sampled", len(sample))
		}

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Dependents > records[j].Dependents
		})

		return model.DependentsReport{
			Org:             s.opts.Org,
			TotalDependents: total,
			Repos:           records,
			SampledRepos:    len(sample),
			GeneratedAt:     s.now(),
		}, nil
	})
}

// Insights composes repository stats, the health report, and summary
// statistics over the repository set into the detailed organization view.
func (s *MetricsService) Insights(ctx context.Context, refresh bool) (model.OrgInsights, error) {
	return cached(s, s.key("insights"), refresh, func() (model.OrgInsights, error) {
		repos, err := s.gh.ListRepositories(ctx, s.opts.Org, s.opts.MaxRepos)
		if err != nil {
			return model.OrgInsights{}, fmt.Errorf("listing repositories for %s: %w", s.opts.Org, err)
		}

		starValues := make(stats.Float64Data, 0, len(repos))
		for _, repo := range repos {
			starValues = append(starValues, float64(repo.Stars))
		}

		meanStars, err := starValues.Mean()
		if err != nil {
			meanStars = 0
		}
		medianStars, err := starValues.Median()
		if err != nil {
			medianStars = 0
		}

		return model.OrgInsights{
			Org:         s.opts.Org,
			Stats:       s.buildRepoStats(repos),
			Health:      BuildHealthReport(repos, s.opts.Thresholds, s.now()),
			MeanStars:   meanStars,
			MedianStars: medianStars,
			GeneratedAt: s.now(),
		}, nil
	})
}

// sample bounds the repository subset used for expensive per-repository
// analyses, keeping the listing order.
func (s *MetricsService) sample(repos []model.Repository) []model.Repository {
	if n := s.opts.SampleRepos; n > 0 && len(repos) > n {
		return repos[:n]
	}
	return repos
}

// splitFullName splits an "owner/repo" string into its two components.
func splitFullName(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
