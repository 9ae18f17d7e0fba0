package store

import "time"

// Event types published to subscribers.
const (
	EventLeaderboard = "leaderboard"
	EventSubmission  = "submission"
)

// LeaderboardEntry is one ranking row.
type LeaderboardEntry struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Time     float64 `json:"time"`
	Rank     int     `json:"rank"`
}

// LeaderboardSnapshot is the latest known leaderboard of a contest.
//
// When a refresh fails the previous Entries are kept and Error is set.
// A later successful refresh clears Error.
type LeaderboardSnapshot struct {
	ContestID string             `json:"contestId"`
	Entries   []LeaderboardEntry `json:"entries"`
	FetchedAt time.Time          `json:"fetchedAt"`

	// Error is the message of the last failed refresh, nil after a success.
	Error *string `json:"error"`
}

// Submission is the latest known state of one submission.
type Submission struct {
	ID        string    `json:"submissionId"`
	ProblemID string    `json:"problemId"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	Verdict   string    `json:"verdict,omitempty"`
	Score     *float64  `json:"score,omitempty"`
	Time      *float64  `json:"time,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Error     *string   `json:"error,omitempty"`
}

// Event is a change notification. Exactly one of Leaderboard or Submission
// is set, matching Type.
type Event struct {
	Type        string               `json:"type"`
	Leaderboard *LeaderboardSnapshot `json:"leaderboard,omitempty"`
	Submission  *Submission          `json:"submission,omitempty"`
}

// Store defines storage and subscription to workspace state.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// SetLeaderboard replaces the leaderboard snapshot and notifies subscribers.
	SetLeaderboard(snapshot LeaderboardSnapshot)

	// SetLeaderboardError records a failed refresh, keeping the previous
	// entries and fetch time, and notifies subscribers.
	SetLeaderboardError(contestID, message string)

	// Leaderboard returns the current snapshot and whether one was ever stored.
	Leaderboard() (LeaderboardSnapshot, bool)

	// PutSubmission stores a submission keyed by ID and notifies subscribers.
	PutSubmission(sub Submission)

	// Submission returns the submission with the given id.
	Submission(id string) (Submission, bool)

	// Submissions returns all submissions, most recently created first.
	Submissions() []Submission

	// Subscribe returns a channel that receives events.
	// The returned channel has a buffer; slow consumers may miss events.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Event

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Event)
}
