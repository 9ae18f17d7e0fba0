package main

import (
	"fmt"

	"github.com/jpalmerr/contestwatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a contestwatch configuration file without starting the server.

This command loads a .env file next to the config when present, parses the
YAML, expands environment variables, and validates all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  contestwatch validate -c config.yaml
  contestwatch validate --config /etc/contestwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Judge API:            %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "  Contest:              %s\n", cfg.ContestID)
	fmt.Fprintf(out, "  Username:             %s\n", cfg.Username)
	fmt.Fprintf(out, "  Port:                 %d\n", cfg.Port)
	fmt.Fprintf(out, "  Language:             %s\n", cfg.Language)
	fmt.Fprintf(out, "  Leaderboard interval: %s\n", cfg.LeaderboardInterval.Duration())
	fmt.Fprintf(out, "  Submission interval:  %s\n", cfg.SubmissionInterval.Duration())

	return nil
}
