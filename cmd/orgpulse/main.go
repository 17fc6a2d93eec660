package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/depscrape"
	githubadapter "github.com/ericfisherdev/orgpulse/internal/adapter/driven/github"
	"github.com/ericfisherdev/orgpulse/internal/adapter/driven/memcache"
	httphandler "github.com/ericfisherdev/orgpulse/internal/adapter/driving/http"
	"github.com/ericfisherdev/orgpulse/internal/application"
	"github.com/ericfisherdev/orgpulse/internal/config"
)

const janitorInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"org", cfg.Organization,
		"cache_ttl", cfg.CacheTTL,
		"concurrency", cfg.Concurrency,
		"sample_repos", cfg.SampleRepos,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire driven adapters.
	gh := githubadapter.NewClient(cfg.GitHubToken, cfg.PageSize)
	scraper := depscrape.New()
	cache := memcache.New(cfg.CacheTTL)
	go cache.StartJanitor(ctx, janitorInterval)

	// 4. Create the metrics service.
	svc := application.NewMetricsService(gh, cache, scraper, application.Options{
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
	})

	// 5. Create HTTP handler and register routes.
	handler := httphandler.NewServeMux(httphandler.NewHandler(svc, slog.Default()), slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute, // miss paths fan out to many upstream calls
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("orgpulse started", "org", cfg.Organization, "listen_addr", cfg.ListenAddr)

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 7. Graceful shutdown with a drain timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
