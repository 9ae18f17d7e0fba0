package server

import (
	"context"
	"net/http"
)

// Workspace is the contest workspace the server fronts.
type Workspace interface {
	// Info describes the joined contest.
	Info() WorkspaceInfo

	// Submit sends a solution for judging and returns the submission id.
	// Rejections that map to a client error are returned as [*SubmitError].
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// WorkspaceInfo is the body of GET /api/workspace.
type WorkspaceInfo struct {
	Title           string        `json:"title"`
	ContestID       string        `json:"contestId"`
	Username        string        `json:"username"`
	Contest         *ContestInfo  `json:"contest"`
	ContestError    string        `json:"contestError,omitempty"`
	Problems        []ProblemInfo `json:"problems"`
	ProblemsError   string        `json:"problemsError,omitempty"`
	Languages       []string      `json:"languages"`
	DefaultLanguage string        `json:"defaultLanguage"`

	// polling intervals in milliseconds
	LeaderboardIntervalMs int64 `json:"leaderboardIntervalMs"`
	SubmissionIntervalMs  int64 `json:"submissionIntervalMs"`
}

// ContestInfo describes a contest.
type ContestInfo struct {
	ContestID   string `json:"contestId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProblemInfo describes a problem.
type ProblemInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Statement  string `json:"statement"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SubmitRequest is the body of POST /api/submissions.
type SubmitRequest struct {
	ProblemID string `json:"problemId"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// SubmitResponse is the 202 body of POST /api/submissions.
type SubmitResponse struct {
	SubmissionID string `json:"submissionId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SubmitError is a submission rejected before reaching the judge.
// Code is the HTTP status the server responds with.
type SubmitError struct {
	Code int
	Err  error
}

// Invalid wraps err as a 400 rejection.
func Invalid(err error) *SubmitError {
	return &SubmitError{Code: http.StatusBadRequest, Err: err}
}

// Conflict wraps err as a 409 rejection.
func Conflict(err error) *SubmitError {
	return &SubmitError{Code: http.StatusConflict, Err: err}
}

func (e *SubmitError) Error() string {
	return e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
