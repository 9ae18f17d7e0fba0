// Package contestwatch is a client for taking part in programming contests
// hosted by a remote judge API.
//
// A [Workspace] joins one contest as one participant. It loads the contest
// details and problems, keeps the leaderboard fresh by polling it, submits
// solutions and polls each submission until the judge delivers a verdict.
// [Workspace.Start] also serves a local dashboard with the problem
// statements, a code editor and the live leaderboard.
//
// # Quick Start
//
//	ws, _ := contestwatch.New(
//	    contestwatch.WithAPIBaseURL("http://localhost:8081"),
//	    contestwatch.WithContest("winter-open"),
//	    contestwatch.WithUsername("Ada Lovelace"),
//	)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	ws.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Workspace uses the functional options pattern for configuration:
//
//	ws, err := contestwatch.New(
//	    contestwatch.WithAPIBaseURL("https://judge.example.com"),
//	    contestwatch.WithContest("winter-open"),
//	    contestwatch.WithUsername("Ada Lovelace"),
//	    contestwatch.WithLeaderboardInterval(30 * time.Second),
//	    contestwatch.WithSubmissionInterval(time.Second),
//	    contestwatch.WithPort(9090),
//	)
//
// The config package loads the same settings from a YAML file.
//
// # Polling
//
// Both refresh loops are built on an interval poller that invokes its action
// immediately when enabled and then on every tick, always calling the most
// recently supplied action. The leaderboard poller runs for the lifetime of
// the workspace. The submission poller is enabled by [Workspace.Submit] and
// disables itself once the submission leaves the Pending, Queued and Running
// states or a status request fails. Results that arrive after polling was
// disabled are discarded.
//
// # Architecture
//
// Workspace consists of several internal packages (under internal/):
//
//   - internal/poller: Interval polling with lifecycle-safe cancellation
//   - internal/judge: HTTP client for the judge API
//   - internal/store: In-memory state with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/metrics: Prometheus collectors
//   - dashboard: Embedded workspace page
//
// The internal packages are not part of the public API and may change
// without notice.
package contestwatch
