package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	contestwatch "github.com/jpalmerr/contestwatch"
	"github.com/jpalmerr/contestwatch/config"
	"github.com/spf13/cobra"
)

// leaderboardCmd renders the contest leaderboard in the terminal.
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Watch the contest leaderboard",
	Long: `Poll the contest leaderboard and print it after every refresh.

With --once the first refresh is printed and the command exits.

Example:
  contestwatch leaderboard -c config.yaml
  contestwatch leaderboard -c config.yaml --once`,
	RunE: runLeaderboard,
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	leaderboardCmd.Flags().Bool("once", false, "print one refresh and exit")
	_ = leaderboardCmd.MarkFlagRequired("config")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	once, _ := cmd.Flags().GetBool("once")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updates := make(chan contestwatch.LeaderboardUpdate, 1)
	opts := append(config.BuildOptions(cfg),
		contestwatch.WithLogger(logger),
		contestwatch.WithLeaderboardCallback(func(u contestwatch.LeaderboardUpdate) {
			select {
			case updates <- u:
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

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			renderLeaderboard(out, u, time.Now())
			if once {
				return u.Error
			}
		}
	}
}

// renderLeaderboard prints one leaderboard refresh. A failed refresh keeps
// the last good ranking and reports the error below it.
func renderLeaderboard(w io.Writer, u contestwatch.LeaderboardUpdate, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tSCORE\tTIME")
	for _, e := range u.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Rank, e.Username, humanize.Ftoa(e.Score), contestwatch.FormatElapsed(e.Time))
	}
	_ = tw.Flush()

	if len(u.Entries) == 0 {
		fmt.Fprintln(w, "(no entries yet)")
	}
	if !u.FetchedAt.IsZero() {
		fmt.Fprintf(w, "updated %s\n", humanize.RelTime(u.FetchedAt, now, "ago", "from now"))
	}
	if u.Error != nil {
		fmt.Fprintf(w, "refresh failed: %v\n", u.Error)
	}
	fmt.Fprintln(w)
}
