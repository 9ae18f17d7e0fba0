// Package main is the entry point for the contestwatch CLI.
//
// contestwatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	contestwatch serve -c config.yaml                  # Start the workspace dashboard
//	contestwatch validate -c config.yaml               # Validate configuration
//	contestwatch join --contest c1 --username ada      # Show contest and problems
//	contestwatch leaderboard -c config.yaml            # Watch the leaderboard
//	contestwatch submit -c config.yaml --problem p1 --file sol.py
//	contestwatch version                               # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "contestwatch",
	Short: "Take part in programming contests from your terminal or browser",
	Long: `contestwatch joins a contest on a remote judge, keeps the leaderboard
fresh and follows your submissions until the judge delivers a verdict.

Quick start:
  1. Create a config file (contestwatch.yaml)
  2. Run: contestwatch serve -c contestwatch.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  api_base_url: http://localhost:8081
  contest_id: winter-open
  username: Ada Lovelace
  leaderboard_interval: 20s`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this contestwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "contestwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger on stderr at the level named by the
// --log-level flag.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := parseLevel(name)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})), nil
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", name, err)
	}
	return level, nil
}
