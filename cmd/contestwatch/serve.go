package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	contestwatch "github.com/jpalmerr/contestwatch"
	"github.com/jpalmerr/contestwatch/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the workspace dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workspace dashboard",
	Long: `Start the contestwatch workspace dashboard.

The server will:
  - Load configuration from the specified YAML file
  - Join the contest and load its problems
  - Keep the leaderboard fresh and follow submissions
  - Serve the workspace UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  contestwatch serve -c config.yaml
  contestwatch serve --config /etc/contestwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"contest", cfg.ContestID,
		"username", cfg.Username,
		"api", cfg.APIBaseURL,
	)

	ws, err := contestwatch.New(append(config.BuildOptions(cfg), contestwatch.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- ws.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
