package contestwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// wsConfig holds mutable state during Workspace construction.
type wsConfig struct {
	title                string
	apiBaseURL           string
	contestID            string
	username             string
	port                 int
	defaultLanguage      string
	leaderboardInterval  time.Duration
	submissionInterval   time.Duration
	requestTimeout       time.Duration
	logger               *slog.Logger
	leaderboardCallbacks []func(LeaderboardUpdate)
	submissionCallbacks  []func(SubmissionResult)
}

// Option is a function that configures a [Workspace] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*wsConfig) error

// WithAPIBaseURL sets the base URL of the judge API, e.g.
// "https://judge.example.com". Required.
//
// Returns an error if the URL is empty.
func WithAPIBaseURL(baseURL string) Option {
	return func(cfg *wsConfig) error {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return errors.New("api base url cannot be empty")
		}
		cfg.apiBaseURL = baseURL
		return nil
	}
}

// WithContest sets the contest to join. Required.
//
// Surrounding whitespace is trimmed. Returns an error if nothing is left.
func WithContest(contestID string) Option {
	return func(cfg *wsConfig) error {
		contestID = strings.TrimSpace(contestID)
		if contestID == "" {
			return ErrContestRequired
		}
		cfg.contestID = contestID
		return nil
	}
}

// WithUsername sets the display name submissions are made under. Required.
//
// Surrounding whitespace is trimmed. Returns an error if nothing is left.
func WithUsername(username string) Option {
	return func(cfg *wsConfig) error {
		username = strings.TrimSpace(username)
		if username == "" {
			return ErrUsernameRequired
		}
		cfg.username = username
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The workspace page and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *wsConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLeaderboardInterval sets how often the leaderboard is refreshed.
// Defaults to 20 seconds.
//
// Returns an error if the duration is zero or negative.
func WithLeaderboardInterval(d time.Duration) Option {
	return func(cfg *wsConfig) error {
		if d <= 0 {
			return errors.New("leaderboard interval must be positive")
		}
		cfg.leaderboardInterval = d
		return nil
	}
}

// WithSubmissionInterval sets how often the status of a submission under
// evaluation is checked. Defaults to 2.5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithSubmissionInterval(d time.Duration) Option {
	return func(cfg *wsConfig) error {
		if d <= 0 {
			return errors.New("submission interval must be positive")
		}
		cfg.submissionInterval = d
		return nil
	}
}

// WithRequestTimeout bounds every judge API request. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *wsConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithDefaultLanguage sets the language used when a submission names none.
// Defaults to "python".
//
// Returns an error if the language is not one of [Languages].
func WithDefaultLanguage(language string) Option {
	return func(cfg *wsConfig) error {
		if !slices.Contains(Languages(), language) {
			return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
		}
		cfg.defaultLanguage = language
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Workspace instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wsConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithLeaderboardCallback registers a function called after every
// leaderboard refresh, successful or not.
//
// Callbacks run on the refresh goroutine after the result is stored, in
// registration order. They must not block. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithLeaderboardCallback(cb func(LeaderboardUpdate)) Option {
	return func(cfg *wsConfig) error {
		if cb == nil {
			return nil
		}
		cfg.leaderboardCallbacks = append(cfg.leaderboardCallbacks, cb)
		return nil
	}
}

// WithSubmissionCallback registers a function called whenever the state of
// a submission changes: once when it is accepted for judging (status
// Pending) and after every status poll.
//
// Callbacks run synchronously after the state is stored, in registration
// order. They must not block. Panics are recovered and logged.
//
// Example:
//
//	ws, err := contestwatch.New(
//	    contestwatch.WithAPIBaseURL("http://localhost:8081"),
//	    contestwatch.WithContest("winter-open"),
//	    contestwatch.WithUsername("ada"),
//	    contestwatch.WithSubmissionCallback(func(r contestwatch.SubmissionResult) {
//	        if !r.Status.IsActive() {
//	            log.Printf("%s: %s", r.ID, r.Verdict)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSubmissionCallback(cb func(SubmissionResult)) Option {
	return func(cfg *wsConfig) error {
		if cb == nil {
			return nil
		}
		cfg.submissionCallbacks = append(cfg.submissionCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab.
//
// If not specified, the page shows "contestwatch".
func WithTitle(title string) Option {
	return func(cfg *wsConfig) error {
		cfg.title = title
		return nil
	}
}
