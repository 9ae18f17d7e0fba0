package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	contestwatch "github.com/jpalmerr/contestwatch"
	"github.com/spf13/cobra"
)

const defaultAPIBaseURL = "http://localhost:8081"

// joinCmd joins a contest and prints its details.
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a contest and list its problems",
	Long: `Join a contest without a config file and print its details and problems.

The judge API defaults to $JUDGE_API, then http://localhost:8081.

Example:
  contestwatch join --contest winter-open --username "Ada Lovelace"
  contestwatch join --contest winter-open --username ada --api https://judge.example.com`,
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().String("contest", "", "contest id (required)")
	joinCmd.Flags().String("username", "", "display name (required)")
	joinCmd.Flags().String("api", "", "judge API base URL")
	joinCmd.Flags().Duration("timeout", 10*time.Second, "judge request timeout")
}

func runJoin(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	contest, _ := cmd.Flags().GetString("contest")
	username, _ := cmd.Flags().GetString("username")
	api, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ws, err := contestwatch.New(
		contestwatch.WithAPIBaseURL(resolveAPI(api)),
		contestwatch.WithContest(contest),
		contestwatch.WithUsername(username),
		contestwatch.WithRequestTimeout(timeout),
		contestwatch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := ws.Join(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		_ = ws.Shutdown(shutdownCtx)
	}()

	c, err := ws.Contest()
	if err != nil {
		return fmt.Errorf("failed to load contest: %w", err)
	}
	problems, err := ws.Problems()
	if err != nil {
		return fmt.Errorf("failed to load problems: %w", err)
	}

	printContest(cmd.OutOrStdout(), ws.Username(), c, problems)
	return nil
}

// resolveAPI picks the judge API base URL from the flag, then $JUDGE_API,
// then the local default.
func resolveAPI(flag string) string {
	if s := strings.TrimSpace(flag); s != "" {
		return s
	}
	if s := strings.TrimSpace(os.Getenv("JUDGE_API")); s != "" {
		return s
	}
	return defaultAPIBaseURL
}

func printContest(w io.Writer, username string, c contestwatch.Contest, problems []contestwatch.Problem) {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	fmt.Fprintf(w, "Joined %s as %s\n", name, username)
	if c.Description != "" {
		fmt.Fprintf(w, "  %s\n", c.Description)
	}
	fmt.Fprintf(w, "\nProblems (%d):\n", len(problems))
	for _, p := range problems {
		if p.Difficulty != "" {
			fmt.Fprintf(w, "  %-12s %s [%s]\n", p.ID, p.Title, p.Difficulty)
		} else {
			fmt.Fprintf(w, "  %-12s %s\n", p.ID, p.Title)
		}
	}
}
