// Package cli contains all the orgpulsectl commands, built using the Cobra
// library. Each command runs one orchestrator once and prints the result as
// JSON, sharing configuration and wiring with the long-running server.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orgpulsectl",
	Short: "One-shot organization metrics queries",
	Long: `orgpulsectl aggregates GitHub organization metrics (repository stats,
contributor reach, dependents, health insights) and prints the result as JSON.
Configuration comes from the same ORGPULSE_ environment variables the server uses.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass the result cache and recompute")
}

// configureLogging routes slog output to stderr at debug level when verbose,
// and discards it otherwise so stdout stays clean JSON.
func configureLogging(verbose bool) {
	if verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
