package contestwatch

import "errors"

var (
	// ErrContestRequired is returned by [New] without a contest id.
	ErrContestRequired = errors.New("contest id is required")

	// ErrUsernameRequired is returned by [New] without a username.
	ErrUsernameRequired = errors.New("username is required")

	// ErrNoProblem is returned by [Workspace.Submit] when no problem is selected.
	ErrNoProblem = errors.New("select a problem to submit")

	// ErrUnknownProblem is returned by [Workspace.Submit] for a problem that
	// is not part of the contest.
	ErrUnknownProblem = errors.New("problem is not part of the contest")

	// ErrEmptyCode is returned by [Workspace.Submit] for blank source code.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrUnsupportedLanguage is returned for a language outside [Languages].
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSubmissionInProgress is returned by [Workspace.Submit] while a
	// previous submission is still being evaluated.
	ErrSubmissionInProgress = errors.New("a submission is already being evaluated")

	// ErrNotJoined is returned by operations that need [Workspace.Join] first.
	ErrNotJoined = errors.New("workspace has not joined the contest")

	// ErrAlreadyJoined is returned by a second [Workspace.Join] or [Workspace.Start].
	ErrAlreadyJoined = errors.New("workspace already joined the contest")
)
