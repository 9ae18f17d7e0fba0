// Standalone mock judge for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/contestwatch serve -c example/config.yaml
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jpalmerr/contestwatch/internal/judge"
	"github.com/jpalmerr/contestwatch/internal/judge/judgetest"
)

const addr = ":8081"

func main() {
	fmt.Println("Mock judge starting on " + addr)
	fmt.Println("Contest: " + judgetest.DemoContestID)
	fmt.Println("Leaderboard scores drift every 15s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fake := judgetest.NewDemo()
	go churn(ctx, fake, 15*time.Second)

	srv := &http.Server{Addr: addr, Handler: fake.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// churn periodically awards points to random participants and re-ranks them.
func churn(ctx context.Context, fake *judgetest.Server, every time.Duration) {
	entries := []judge.LeaderboardEntry{
		{Username: "grace", Score: 300, Time: 2710},
		{Username: "linus", Score: 200, Time: 1835},
		{Username: "barbara", Score: 100, Time: 412},
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		i := rand.Intn(len(entries))
		entries[i].Score += 100
		entries[i].Time += float64(60 + rand.Intn(600))

		slices.SortFunc(entries, func(a, b judge.LeaderboardEntry) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			return cmp.Compare(a.Time, b.Time)
		})
		for j := range entries {
			entries[j].Rank = j + 1
		}
		fake.SetLeaderboard(judgetest.DemoContestID, slices.Clone(entries))
		slog.Info("leaderboard changed", "username", entries[0].Username, "leader_score", entries[0].Score)
	}
}
