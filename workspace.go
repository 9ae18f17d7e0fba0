package contestwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/contestwatch/dashboard"
	"github.com/jpalmerr/contestwatch/internal/judge"
	"github.com/jpalmerr/contestwatch/internal/poller"
	"github.com/jpalmerr/contestwatch/internal/server"
	"github.com/jpalmerr/contestwatch/internal/store"
)

const (
	defaultPort                = 8080
	defaultLanguage            = "python"
	defaultLeaderboardInterval = 20 * time.Second
	defaultSubmissionInterval  = 2500 * time.Millisecond
	defaultRequestTimeout      = 10 * time.Second
	shutdownTimeout            = 5 * time.Second
)

// Languages returns the languages a solution can be submitted in.
func Languages() []string {
	return []string{"python", "cpp", "java", "javascript"}
}

// Workspace is a joined contest: the problems, the live leaderboard and the
// submission path of one participant.
//
// Workspace is created using [New] with functional options. [Workspace.Join]
// loads the contest and starts the leaderboard and submission pollers;
// [Workspace.Start] additionally serves the local dashboard and blocks.
//
//	ws, err := contestwatch.New(
//	    contestwatch.WithAPIBaseURL("http://localhost:8081"),
//	    contestwatch.WithContest("winter-open"),
//	    contestwatch.WithUsername("Ada Lovelace"),
//	)
//	if err != nil {
//	    slog.Error("failed to create workspace", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	ws.Start(ctx) // blocks until context cancelled
type Workspace struct {
	title                string
	contestID            string
	username             string
	port                 int
	defaultLanguage      string
	leaderboardInterval  time.Duration
	submissionInterval   time.Duration
	logger               *slog.Logger
	leaderboardCallbacks []func(LeaderboardUpdate)
	submissionCallbacks  []func(SubmissionResult)

	client *judge.Client
	store  *store.MemoryStore

	mu          sync.Mutex
	joined      bool
	contest     *Contest
	contestErr  error
	problems    []Problem
	problemsErr error
	latest      *SubmissionResult
	submitting  bool
	leaderboard *poller.Poller
	submission  *poller.Poller
}

// New creates a new [Workspace] with the given options.
//
// [WithAPIBaseURL], [WithContest] and [WithUsername] are required. Other
// options have defaults:
//   - Port: 8080
//   - Leaderboard interval: 20 seconds
//   - Submission interval: 2.5 seconds
//   - Request timeout: 10 seconds
//   - Default language: python
//
// Returns an error if a required option is missing or any option is invalid.
func New(opts ...Option) (*Workspace, error) {
	cfg := &wsConfig{
		port:                defaultPort,
		defaultLanguage:     defaultLanguage,
		leaderboardInterval: defaultLeaderboardInterval,
		submissionInterval:  defaultSubmissionInterval,
		requestTimeout:      defaultRequestTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.contestID == "" {
		return nil, ErrContestRequired
	}
	if cfg.username == "" {
		return nil, ErrUsernameRequired
	}
	if cfg.apiBaseURL == "" {
		return nil, errors.New("api base url is required")
	}

	client, err := judge.NewClient(cfg.apiBaseURL, cfg.requestTimeout)
	if err != nil {
		return nil, err
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Workspace{
		title:                cfg.title,
		contestID:            cfg.contestID,
		username:             cfg.username,
		port:                 cfg.port,
		defaultLanguage:      cfg.defaultLanguage,
		leaderboardInterval:  cfg.leaderboardInterval,
		submissionInterval:   cfg.submissionInterval,
		logger:               logger.With("contest", cfg.contestID, "username", cfg.username),
		leaderboardCallbacks: cfg.leaderboardCallbacks,
		submissionCallbacks:  cfg.submissionCallbacks,
		client:               client,
		store:                store.NewMemoryStore(),
	}, nil
}

// Start joins the contest and serves the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The contest details and problems are loaded once
//   - The leaderboard is refreshed immediately, then at the leaderboard interval
//   - Submissions made through the dashboard or [Workspace.Submit] are polled
//     until judged
//   - The dashboard is available at http://localhost:<port>
//
// On cancellation both pollers are stopped and in-flight requests are given
// up to 5 seconds to finish.
//
// Returns nil on graceful shutdown. Returns an error if the workspace was
// already joined or the HTTP server fails to start.
func (w *Workspace) Start(ctx context.Context) error {
	w.logger.Info("contestwatch starting", "api", w.client.BaseURL())
	w.logger.Info("polling configured",
		"leaderboard_interval", w.leaderboardInterval.String(),
		"submission_interval", w.submissionInterval.String(),
	)
	w.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", w.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	if err := w.Join(ctx); err != nil {
		return err
	}

	httpServer := server.NewServer(w.store, serverWorkspace{w}, w.port, dashboard.Assets, w.title, w.logger)
	if err := httpServer.Start(ctx); err != nil {
		w.drain()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	w.drain()
	w.logger.Info("contestwatch stopped")
	return nil
}

// Join loads the contest and starts polling without serving the dashboard.
//
// Failures to load the contest details or problems are logged and kept
// (see [Workspace.Contest] and [Workspace.Problems]); they do not fail Join.
// The pollers live until ctx is cancelled or [Workspace.Shutdown] is called.
//
// Returns [ErrAlreadyJoined] if called more than once.
func (w *Workspace) Join(ctx context.Context) error {
	w.mu.Lock()
	if w.joined {
		w.mu.Unlock()
		return ErrAlreadyJoined
	}
	w.joined = true
	w.mu.Unlock()

	w.load(ctx)

	leaderboard, err := poller.Start(ctx, w.refreshLeaderboard,
		poller.Config{Interval: w.leaderboardInterval, Enabled: true},
		poller.WithName("leaderboard"),
		poller.WithLogger(w.logger),
	)
	if err != nil {
		return fmt.Errorf("start leaderboard polling: %w", err)
	}

	// armed by Submit; the placeholder action is replaced before every arming
	submission, err := poller.Start(ctx, func(context.Context) {},
		poller.Config{Interval: w.submissionInterval, Enabled: false},
		poller.WithName("submission"),
		poller.WithLogger(w.logger),
		poller.WithSkipOverlap(),
	)
	if err != nil {
		leaderboard.Stop()
		return fmt.Errorf("start submission polling: %w", err)
	}

	w.mu.Lock()
	w.leaderboard = leaderboard
	w.submission = submission
	w.mu.Unlock()
	return nil
}

// Shutdown stops both pollers and waits for in-flight requests to finish or
// for ctx to end. Safe to call more than once and before [Workspace.Join].
func (w *Workspace) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	pollers := []*poller.Poller{w.leaderboard, w.submission}
	w.mu.Unlock()

	var errs []error
	for _, p := range pollers {
		if p == nil {
			continue
		}
		if err := p.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s poller: %w", p.Name(), err))
		}
	}
	w.client.Close()
	return errors.Join(errs...)
}

func (w *Workspace) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		w.logger.Warn("pollers did not drain", "error", err)
	}
}

// load fetches the contest details and problems concurrently.
func (w *Workspace) load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c, err := w.client.Contest(ctx, w.contestID)
		w.mu.Lock()
		defer w.mu.Unlock()
		if err != nil {
			w.logger.Warn("failed to load contest", "error", err)
			w.contestErr = err
			return
		}
		contest := contestFromJudge(c)
		w.contest = &contest
	}()

	go func() {
		defer wg.Done()
		p, err := w.client.Problems(ctx, w.contestID)
		w.mu.Lock()
		defer w.mu.Unlock()
		if err != nil {
			w.logger.Warn("failed to load problems", "error", err)
			w.problemsErr = err
			return
		}
		w.problems = problemsFromJudge(p)
		w.logger.Debug("problems loaded", "count", len(w.problems))
	}()

	wg.Wait()
}

// refreshLeaderboard is the leaderboard poller action.
func (w *Workspace) refreshLeaderboard(ctx context.Context) {
	entries, err := w.client.Leaderboard(ctx, w.contestID)
	if !poller.Active(ctx) {
		return
	}

	if err != nil {
		w.logger.Warn("leaderboard refresh failed", "error", err)
		w.store.SetLeaderboardError(w.contestID, err.Error())
		update := w.Leaderboard()
		update.Error = err
		w.notifyLeaderboard(update)
		return
	}

	now := time.Now()
	rows := make([]store.LeaderboardEntry, len(entries))
	for i, e := range entries {
		rows[i] = store.LeaderboardEntry{Username: e.Username, Score: e.Score, Time: e.Time, Rank: e.Rank}
	}
	w.store.SetLeaderboard(store.LeaderboardSnapshot{ContestID: w.contestID, Entries: rows, FetchedAt: now})
	w.logger.Debug("leaderboard refreshed", "entries", len(entries))

	w.notifyLeaderboard(LeaderboardUpdate{
		ContestID: w.contestID,
		Entries:   leaderboardFromJudge(entries),
		FetchedAt: now,
	})
}

// Submit sends a solution for judging and starts polling its status.
//
// An empty language selects the default language. Submit returns
// [ErrNoProblem], [ErrUnknownProblem], [ErrEmptyCode] or
// [ErrUnsupportedLanguage] for an invalid request, [ErrSubmissionInProgress]
// while a previous submission is still being evaluated and [ErrNotJoined]
// before [Workspace.Join]. Judge API failures are returned wrapped; the
// message of a [judge.APIError] is the judge's response body.
//
// On success the submission is recorded with status Pending and its id is
// returned. Status polling stops once the status leaves the active set or a
// status request fails.
func (w *Workspace) Submit(ctx context.Context, problemID, language, code string) (string, error) {
	problemID = strings.TrimSpace(problemID)
	if problemID == "" {
		return "", ErrNoProblem
	}
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}
	if language == "" {
		language = w.defaultLanguage
	}
	if !slices.Contains(Languages(), language) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	w.mu.Lock()
	if w.submission == nil {
		w.mu.Unlock()
		return "", ErrNotJoined
	}
	if w.problems != nil && !slices.ContainsFunc(w.problems, func(p Problem) bool { return p.ID == problemID }) {
		w.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrUnknownProblem, problemID)
	}
	if w.submitting || w.submission.State() == poller.StateArmed {
		w.mu.Unlock()
		return "", ErrSubmissionInProgress
	}
	w.submitting = true
	contestID := w.contestID
	if w.contest != nil {
		contestID = w.contest.ID
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	resp, err := w.client.Submit(ctx, judge.SubmissionRequest{
		ContestID: contestID,
		ProblemID: problemID,
		Username:  w.username,
		Language:  language,
		Code:      code,
	})
	if err != nil {
		w.logger.Warn("submission failed", "problem_id", problemID, "error", err)
		return "", fmt.Errorf("submit solution: %w", err)
	}

	pending := SubmissionResult{
		ID:        resp.SubmissionID,
		ProblemID: problemID,
		Language:  language,
		Status:    StatusPending,
		UpdatedAt: time.Now(),
	}
	w.mu.Lock()
	w.latest = &pending
	w.mu.Unlock()
	w.recordSubmission(pending)
	w.logger.Info("solution submitted", "submission_id", pending.ID, "problem_id", problemID, "language", language)

	w.submission.SetAction(w.pollSubmission(pending))
	if err := w.submission.Update(poller.Config{Interval: w.submissionInterval, Enabled: true}); err != nil {
		return pending.ID, fmt.Errorf("start submission polling: %w", err)
	}
	return pending.ID, nil
}

// pollSubmission returns the submission poller action for one submission.
func (w *Workspace) pollSubmission(base SubmissionResult) poller.Action {
	return func(ctx context.Context) {
		status, err := w.client.SubmissionStatus(ctx, base.ID)
		if !poller.Active(ctx) {
			return
		}

		result := base
		if prev, ok := w.SubmissionStatus(); ok && prev.ID == base.ID {
			result = prev
		}
		result.UpdatedAt = time.Now()

		if err != nil {
			result.Error = err
			// disable before recording so a follow-up Submit sees an idle poller
			w.stopSubmissionPolling()
			w.logger.Warn("submission status check failed", "submission_id", base.ID, "error", err)
			w.updateLatest(result)
			return
		}

		result.Status = Status(status.Status)
		result.Verdict = status.Verdict
		result.Score = status.Score
		result.Time = status.Time
		result.Error = nil

		if !result.Status.IsActive() {
			w.stopSubmissionPolling()
			w.logger.Info("submission judged", "submission_id", base.ID, "status", result.Status.String(), "verdict", result.Verdict)
		} else {
			w.logger.Debug("submission pending", "submission_id", base.ID, "status", result.Status.String())
		}
		w.updateLatest(result)
	}
}

func (w *Workspace) stopSubmissionPolling() {
	if err := w.submission.Update(poller.Config{Interval: w.submissionInterval, Enabled: false}); err != nil {
		w.logger.Error("failed to stop submission polling", "error", err)
	}
}

// updateLatest records result and makes it the latest state if it still
// describes the most recent submission.
func (w *Workspace) updateLatest(result SubmissionResult) {
	w.mu.Lock()
	if w.latest != nil && w.latest.ID == result.ID {
		w.latest = &result
	}
	w.mu.Unlock()

	w.recordSubmission(result)
}

func (w *Workspace) recordSubmission(result SubmissionResult) {
	sub := store.Submission{
		ID:        result.ID,
		ProblemID: result.ProblemID,
		Language:  result.Language,
		Status:    result.Status.String(),
		Verdict:   result.Verdict,
		Score:     result.Score,
		Time:      result.Time,
		UpdatedAt: result.UpdatedAt,
	}
	if result.Error != nil {
		msg := result.Error.Error()
		sub.Error = &msg
	}
	w.store.PutSubmission(sub)

	for _, cb := range w.submissionCallbacks {
		invokeCallbackSafe(w.logger, "submission", func() { cb(result) })
	}
}

func (w *Workspace) notifyLeaderboard(update LeaderboardUpdate) {
	for _, cb := range w.leaderboardCallbacks {
		invokeCallbackSafe(w.logger, "leaderboard", func() { cb(update) })
	}
}

// Contest returns the contest details, or the error that prevented loading
// them. Returns [ErrNotJoined] before [Workspace.Join].
func (w *Workspace) Contest() (Contest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case !w.joined:
		return Contest{}, ErrNotJoined
	case w.contestErr != nil:
		return Contest{}, w.contestErr
	case w.contest == nil:
		return Contest{ID: w.contestID}, nil
	}
	return *w.contest, nil
}

// Problems returns a copy of the contest problems, or the error that
// prevented loading them. Returns [ErrNotJoined] before [Workspace.Join].
func (w *Workspace) Problems() ([]Problem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.joined {
		return nil, ErrNotJoined
	}
	if w.problemsErr != nil {
		return nil, w.problemsErr
	}
	return slices.Clone(w.problems), nil
}

// Leaderboard returns the latest leaderboard. The zero value is returned
// before the first refresh completes.
func (w *Workspace) Leaderboard() LeaderboardUpdate {
	snap, ok := w.store.Leaderboard()
	if !ok {
		return LeaderboardUpdate{}
	}

	update := LeaderboardUpdate{
		ContestID: snap.ContestID,
		Entries:   make([]LeaderboardEntry, len(snap.Entries)),
		FetchedAt: snap.FetchedAt,
	}
	for i, e := range snap.Entries {
		update.Entries[i] = LeaderboardEntry{Username: e.Username, Score: e.Score, Time: e.Time, Rank: e.Rank}
	}
	if snap.Error != nil {
		update.Error = errors.New(*snap.Error)
	}
	return update
}

// SubmissionStatus returns the state of the most recent submission.
func (w *Workspace) SubmissionStatus() (SubmissionResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.latest == nil {
		return SubmissionResult{}, false
	}
	return *w.latest, true
}

// ContestID returns the configured contest id.
func (w *Workspace) ContestID() string {
	return w.contestID
}

// Username returns the configured display name.
func (w *Workspace) Username() string {
	return w.username
}

// Port returns the configured HTTP port for the dashboard server.
func (w *Workspace) Port() int {
	return w.port
}

// DefaultLanguage returns the language used when a submission names none.
func (w *Workspace) DefaultLanguage() string {
	return w.defaultLanguage
}

// LeaderboardInterval returns the configured interval between leaderboard refreshes.
func (w *Workspace) LeaderboardInterval() time.Duration {
	return w.leaderboardInterval
}

// SubmissionInterval returns the configured interval between submission status checks.
func (w *Workspace) SubmissionInterval() time.Duration {
	return w.submissionInterval
}

// invokeCallbackSafe calls a user callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(logger *slog.Logger, kind string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked", "callback", kind, "panic", r)
		}
	}()
	call()
}
