package contestwatch

import (
	"context"
	"errors"

	"github.com/jpalmerr/contestwatch/internal/server"
)

// serverWorkspace exposes a Workspace to the dashboard server.
type serverWorkspace struct {
	w *Workspace
}

func (s serverWorkspace) Info() server.WorkspaceInfo {
	w := s.w
	info := server.WorkspaceInfo{
		Title:                 w.title,
		ContestID:             w.contestID,
		Username:              w.username,
		Problems:              []server.ProblemInfo{},
		Languages:             Languages(),
		DefaultLanguage:       w.defaultLanguage,
		LeaderboardIntervalMs: w.leaderboardInterval.Milliseconds(),
		SubmissionIntervalMs:  w.submissionInterval.Milliseconds(),
	}

	if c, err := w.Contest(); err != nil {
		info.ContestError = err.Error()
	} else {
		info.Contest = &server.ContestInfo{ContestID: c.ID, Name: c.Name, Description: c.Description}
	}

	problems, err := w.Problems()
	if err != nil {
		info.ProblemsError = err.Error()
	}
	for _, p := range problems {
		info.Problems = append(info.Problems, server.ProblemInfo{
			ID:         p.ID,
			Title:      p.Title,
			Statement:  p.Statement,
			Difficulty: p.Difficulty,
		})
	}
	return info
}

func (s serverWorkspace) Submit(ctx context.Context, req server.SubmitRequest) (string, error) {
	id, err := s.w.Submit(ctx, req.ProblemID, req.Language, req.Code)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, ErrNoProblem), errors.Is(err, ErrUnknownProblem),
		errors.Is(err, ErrEmptyCode), errors.Is(err, ErrUnsupportedLanguage):
		return "", server.Invalid(err)
	case errors.Is(err, ErrSubmissionInProgress), errors.Is(err, ErrNotJoined):
		return "", server.Conflict(err)
	}
	return "", err
}
