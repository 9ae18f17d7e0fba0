// Example program embedding contestwatch as a library.
//
// It starts an in-process mock judge, joins its demo contest, submits a
// solution and serves the workspace dashboard.
//
// Usage:
//
//	go run ./example
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	contestwatch "github.com/jpalmerr/contestwatch"
	"github.com/jpalmerr/contestwatch/internal/judge/judgetest"
)

const judgeAddr = "localhost:8081"

func main() {
	// start mock judge
	judgeSrv := &http.Server{Addr: judgeAddr, Handler: judgetest.NewDemo().Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = judgeSrv.ListenAndServe() }()
	defer func() { _ = judgeSrv.Close() }()
	time.Sleep(100 * time.Millisecond)

	ws, err := contestwatch.New(
		contestwatch.WithAPIBaseURL("http://"+judgeAddr),
		contestwatch.WithContest(judgetest.DemoContestID),
		contestwatch.WithUsername("Ada Lovelace"),
		contestwatch.WithTitle("Winter Open"),
		contestwatch.WithLeaderboardInterval(5*time.Second),
		contestwatch.WithSubmissionInterval(time.Second),
		contestwatch.WithPort(8080),
		contestwatch.WithSubmissionCallback(func(r contestwatch.SubmissionResult) {
			slog.Info("submission update", "submission_id", r.ID, "status", r.Status.String())
		}),
	)
	if err != nil {
		slog.Error("failed to create workspace", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   contestwatch Demo                                   ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Mock judge on http://localhost:8081                 ║")
	fmt.Println("  ║   One sample submission is sent on startup            ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		// Start joins the contest; wait for it before submitting
		time.Sleep(500 * time.Millisecond)
		if _, err := ws.Submit(ctx, "two-sum", "python", "a, b = map(int, input().split())\nprint(a + b)\n"); err != nil {
			slog.Warn("sample submission failed", "error", err)
		}
	}()

	if err := ws.Start(ctx); err != nil {
		slog.Error("workspace error", "error", err)
		os.Exit(1)
	}
}
