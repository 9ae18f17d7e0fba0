package contestwatch

import (
	"fmt"
	"math"
	"time"
)

// Status is the judging state of a submission as reported by the judge API.
//
// The judge reports Queued, Running and the final verdict statuses. Pending
// is recorded locally between a successful submit and the first status
// poll. Rejected and Failed are terminal states some judges emit for
// submissions that never ran.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusQueued       Status = "Queued"
	StatusRunning      Status = "Running"
	StatusAccepted     Status = "Accepted"
	StatusWrongAnswer  Status = "Wrong Answer"
	StatusRuntimeError Status = "Runtime Error"
	StatusCompileError Status = "Compile Error"
	StatusSystemError  Status = "System Error"
	StatusRejected     Status = "Rejected"
	StatusFailed       Status = "Failed"
)

// String returns the string representation of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the submission is still being evaluated.
//
// Only Pending, Queued and Running are active. Any other value, including
// statuses this package does not know about, ends submission polling.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusQueued, StatusRunning:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is a final verdict known to this package.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusRuntimeError, StatusCompileError,
		StatusSystemError, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// FormatElapsed renders a duration given in seconds as mm:ss.
//
// Negative and NaN values render as 00:00. Fractional seconds are truncated.
// Minutes are not wrapped into hours, so 3725 seconds renders as 62:05.
func FormatElapsed(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// SubmissionResult is the latest known state of one submission.
//
// SubmissionResult is passed to submission callbacks on every status poll.
// Score and Time are nil until the judge reports them.
type SubmissionResult struct {
	// ID is the submission identifier assigned by the judge.
	ID string

	// ProblemID is the problem the solution was submitted for.
	ProblemID string

	// Language is the language the solution was written in.
	Language string

	// Status is the judging state.
	Status Status

	// Verdict is the judge's human-readable verdict, empty while judging.
	Verdict string

	// Score is the awarded score, if reported.
	Score *float64

	// Time is the execution time in seconds, if reported.
	Time *float64

	// UpdatedAt is when this state was observed.
	UpdatedAt time.Time

	// Error is set when the status could not be fetched. Polling stops on error.
	Error error
}

// LeaderboardUpdate is the outcome of one leaderboard poll.
//
// On failure Entries and FetchedAt describe the last successful fetch and
// Error describes the failed one.
type LeaderboardUpdate struct {
	// ContestID is the contest the leaderboard belongs to.
	ContestID string

	// Entries is the ranking, best first.
	Entries []LeaderboardEntry

	// FetchedAt is when Entries were fetched. Zero if no fetch has succeeded.
	FetchedAt time.Time

	// Error is the fetch error, nil on success.
	Error error
}
