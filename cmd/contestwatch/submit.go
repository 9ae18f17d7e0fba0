package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	contestwatch "github.com/jpalmerr/contestwatch"
	"github.com/jpalmerr/contestwatch/config"
	"github.com/spf13/cobra"
)

// submitCmd submits a solution and waits for the verdict.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a solution and wait for the verdict",
	Long: `Submit a solution file for a problem and follow its status until the
judge delivers a verdict.

The language defaults to the config's language.

Example:
  contestwatch submit -c config.yaml --problem p1 --file solution.py
  contestwatch submit -c config.yaml --problem p2 --file main.cpp --language cpp`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	submitCmd.Flags().String("problem", "", "problem id (required)")
	submitCmd.Flags().StringP("file", "f", "", "solution source file (required)")
	submitCmd.Flags().String("language", "", "solution language")
	_ = submitCmd.MarkFlagRequired("config")
	_ = submitCmd.MarkFlagRequired("problem")
	_ = submitCmd.MarkFlagRequired("file")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	problem, _ := cmd.Flags().GetString("problem")
	file, _ := cmd.Flags().GetString("file")
	language, _ := cmd.Flags().GetString("language")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	code, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read solution: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := make(chan contestwatch.SubmissionResult, 16)
	opts := append(config.BuildOptions(cfg),
		contestwatch.WithLogger(logger),
		contestwatch.WithSubmissionCallback(func(r contestwatch.SubmissionResult) {
			select {
			case results <- r:
			case <-ctx.Done():
			}
		}),
	)

	ws, err := contestwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := ws.Join(ctx); err != nil {
		return err
	}
	defer func() {
		stop()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		_ = ws.Shutdown(shutdownCtx)
	}()

	id, err := ws.Submit(ctx, problem, language, string(code))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Submitted %s (%s)\n", id, humanize.Bytes(uint64(len(code))))

	var last contestwatch.Status
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-results:
			if r.ID != id {
				continue
			}
			if r.Error != nil {
				return fmt.Errorf("submission %s: %w", id, r.Error)
			}
			if r.Status != last {
				last = r.Status
				printStatus(out, r)
			}
			if !r.Status.IsActive() {
				return nil
			}
		}
	}
}

func printStatus(w io.Writer, r contestwatch.SubmissionResult) {
	if r.Status.IsActive() {
		fmt.Fprintf(w, "  %s\n", r.Status)
		return
	}

	fmt.Fprintf(w, "Verdict: %s\n", r.Status)
	if r.Verdict != "" && r.Verdict != r.Status.String() {
		fmt.Fprintf(w, "  %s\n", r.Verdict)
	}
	if r.Score != nil {
		fmt.Fprintf(w, "  Score: %s\n", humanize.Ftoa(*r.Score))
	}
	if r.Time != nil {
		fmt.Fprintf(w, "  Time:  %.2fs\n", *r.Time)
	}
}
