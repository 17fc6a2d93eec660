package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/depscrape"
	githubadapter "github.com/ericfisherdev/orgpulse/internal/adapter/driven/github"
	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/memcache"
	"github.com/ericfisherdev/orgpulse/internal/application"
	"github.com/ericfisherdev/orgpulse/internal/config"
)

// fetchFunc runs one orchestrator against a freshly wired service.
type fetchFunc func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error)

// runMetric wires the pipeline from environment configuration, runs a single
// orchestrator, and prints the result as pretty JSON on stdout.
func runMetric(cmd *cobra.Command, fetch fetchFunc) error {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	configureLogging(verbose)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	noCache, _ := cmd.InheritedFlags().GetBool("no-cache")

	gh := githubadapter.NewClient(cfg.GitHubToken, cfg.PageSize)
	cache := memcache.New(cfg.CacheTTL)
	scraper := depscrape.New()
	svc := application.NewMetricsService(gh, cache, scraper, serviceOptions(cfg))

	result, err := fetch(cmd.Context(), svc, noCache)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// serviceOptions maps loaded configuration onto pipeline options.
func serviceOptions(cfg *config.Config) application.Options {
	return application.Options{
		Org:             cfg.Organization,
		Concurrency:     cfg.Concurrency,
		MaxRepos:        cfg.MaxRepos,
		SampleRepos:     cfg.SampleRepos,
		TopRepos:        cfg.Scoring.TopRepos,
		TopContributors: cfg.Scoring.TopContributors,
		Weights: application.ScoreWeights{
			Stars:        cfg.Scoring.StarWeight,
			Forks:        cfg.Scoring.ForkWeight,
			Issues:       cfg.Scoring.IssueWeight,
			RecentBonus:  cfg.Scoring.RecentBonus,
			RecentWindow: cfg.Scoring.RecentWindow,
		},
		Thresholds: application.HealthThresholds{
			StaleDays:     cfg.Health.StaleDays,
			AttentionDays: cfg.Health.AttentionDays,
		},
	}
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the organization's public repository count",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.RepositoryCount(ctx, refresh)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate repository stats and the most active repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.RepositoryStats(ctx, refresh)
		})
	},
}

var contributorsCmd = &cobra.Command{
	Use:   "contributors",
	Short: "Print internal/external contributor counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.ContributorStats(ctx, refresh)
		})
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the top contributors across sampled repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.TopContributors(ctx, refresh)
		})
	},
}

var reachCmd = &cobra.Command{
	Use:   "reach",
	Short: "Print follower reach across organization members",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.FollowerReach(ctx, refresh)
		})
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents",
	Short: "Print estimated dependent counts for sampled repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.Dependents(ctx, refresh)
		})
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print the composite health and activity view",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMetric(cmd, func(ctx context.Context, svc *application.MetricsService, refresh bool) (any, error) {
			return svc.Insights(ctx, refresh)
		})
	},
}

func init() {
	rootCmd.AddCommand(countCmd, statsCmd, contributorsCmd, topCmd, reachCmd, dependentsCmd, insightsCmd)
}
