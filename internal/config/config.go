// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	Organization string
	ListenAddr   string

	// CacheTTL is the default lifetime of a memoized metric result.
	CacheTTL time.Duration

	// Concurrency bounds every multi-item fan-out (contributor, follower,
	// and dependents fetches).
	Concurrency int

	// MaxRepos caps how many repositories a full listing fetches.
	MaxRepos int

	// SampleRepos bounds the subset of repositories used for expensive
	// per-repository analyses (contributors, dependents). Completeness is
	// intentionally traded for latency.
	SampleRepos int

	// PageSize is the per_page value used for paginated GitHub requests.
	PageSize int

	Scoring ScoringConfig
	Health  HealthConfig
}

// ScoringConfig holds the weights used by the activity scoring engine.
type ScoringConfig struct {
	StarWeight      int
	ForkWeight      int
	IssueWeight     int
	RecentBonus     int
	RecentWindow    time.Duration
	TopRepos        int
	TopContributors int
}

// HealthConfig holds the thresholds used for health bucket classification.
type HealthConfig struct {
	StaleDays     int
	AttentionDays int
}

// Load reads configuration from environment variables and returns a validated Config.
// ORGPULSE_GITHUB_TOKEN and ORGPULSE_ORG are required. Optional variables with
// defaults: ORGPULSE_LISTEN_ADDR (127.0.0.1:8991), ORGPULSE_CACHE_TTL (15m),
// ORGPULSE_CONCURRENCY (10), ORGPULSE_MAX_REPOS (300), ORGPULSE_SAMPLE_REPOS (30),
// ORGPULSE_PAGE_SIZE (100), plus scoring weight and health threshold overrides.
func Load() (*Config, error) {
	token := os.Getenv("ORGPULSE_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("ORGPULSE_GITHUB_TOKEN is required")
	}

	org := os.Getenv("ORGPULSE_ORG")
	if org == "" {
		return nil, fmt.Errorf("ORGPULSE_ORG is required")
	}

	listenAddr := "127.0.0.1:8991"
	if v, ok := os.LookupEnv("ORGPULSE_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	cacheTTL := 15 * time.Minute
	if v, ok := os.LookupEnv("ORGPULSE_CACHE_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ORGPULSE_CACHE_TTL has invalid duration %q: %w", v, err)
		}
		cacheTTL = parsed
	}

	concurrency, err := intEnv("ORGPULSE_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("ORGPULSE_CONCURRENCY must be at least 1, got %d", concurrency)
	}

	maxRepos, err := intEnv("ORGPULSE_MAX_REPOS", 300)
	if err != nil {
		return nil, err
	}

	sampleRepos, err := intEnv("ORGPULSE_SAMPLE_REPOS", 30)
	if err != nil {
		return nil, err
	}

	pageSize, err := intEnv("ORGPULSE_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, fmt.Errorf("ORGPULSE_PAGE_SIZE must be between 1 and 100, got %d", pageSize)
	}

	scoring, err := loadScoring()
	if err != nil {
		return nil, err
	}

	health, err := loadHealth()
	if err != nil {
		return nil, err
	}

	return &Config{
		GitHubToken:  token,
		Organization: org,
		ListenAddr:   listenAddr,
		CacheTTL:     cacheTTL,
		Concurrency:  concurrency,
		MaxRepos:     maxRepos,
		SampleRepos:  sampleRepos,
		PageSize:     pageSize,
		Scoring:      scoring,
		Health:       health,
	}, nil
}

func loadScoring() (ScoringConfig, error) {
	starWeight, err := intEnv("ORGPULSE_STAR_WEIGHT", 10)
	if err != nil {
		return ScoringConfig{}, err
	}
	forkWeight, err := intEnv("ORGPULSE_FORK_WEIGHT", 5)
	if err != nil {
		return ScoringConfig{}, err
	}
	issueWeight, err := intEnv("ORGPULSE_ISSUE_WEIGHT", 2)
	if err != nil {
		return ScoringConfig{}, err
	}
	recentBonus, err := intEnv("ORGPULSE_RECENT_BONUS", 1000)
	if err != nil {
		return ScoringConfig{}, err
	}
	recentDays, err := intEnv("ORGPULSE_RECENT_DAYS", 30)
	if err != nil {
		return ScoringConfig{}, err
	}
	topRepos, err := intEnv("ORGPULSE_TOP_REPOS", 10)
	if err != nil {
		return ScoringConfig{}, err
	}
	topContributors, err := intEnv("ORGPULSE_TOP_CONTRIBUTORS", 10)
	if err != nil {
		return ScoringConfig{}, err
	}

	return ScoringConfig{
		StarWeight:      starWeight,
		ForkWeight:      forkWeight,
		IssueWeight:     issueWeight,
		RecentBonus:     recentBonus,
		RecentWindow:    time.Duration(recentDays) * 24 * time.Hour,
		TopRepos:        topRepos,
		TopContributors: topContributors,
	}, nil
}

func loadHealth() (HealthConfig, error) {
	staleDays, err := intEnv("ORGPULSE_STALE_DAYS", 180)
	if err != nil {
		return HealthConfig{}, err
	}
	attentionDays, err := intEnv("ORGPULSE_ATTENTION_DAYS", 30)
	if err != nil {
		return HealthConfig{}, err
	}
	if attentionDays > staleDays {
		return HealthConfig{}, fmt.Errorf("ORGPULSE_ATTENTION_DAYS (%d) must not exceed ORGPULSE_STALE_DAYS (%d)", attentionDays, staleDays)
	}

	return HealthConfig{
		StaleDays:     staleDays,
		AttentionDays: attentionDays,
	}, nil
}

// intEnv reads an integer environment variable, returning the fallback when unset.
func intEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}

	return parsed, nil
}
