package contestwatch

import "github.com/jpalmerr/contestwatch/internal/judge"

// Contest describes the contest a [Workspace] is joined to.
type Contest struct {
	ID          string
	Name        string
	Description string
}

// Problem is one problem of the contest.
type Problem struct {
	ID         string
	Title      string
	Statement  string
	Difficulty string
}

// LeaderboardEntry is one row of the contest ranking.
type LeaderboardEntry struct {
	Username string
	Score    float64

	// Time is the accumulated solve time in seconds. See [FormatElapsed].
	Time float64
	Rank int
}

func contestFromJudge(c judge.Contest) Contest {
	return Contest{ID: c.ContestID, Name: c.Name, Description: c.Description}
}

func problemsFromJudge(in []judge.Problem) []Problem {
	out := make([]Problem, len(in))
	for i, p := range in {
		out[i] = Problem{ID: p.ID, Title: p.Title, Statement: p.Statement, Difficulty: p.Difficulty}
	}
	return out
}

func leaderboardFromJudge(in []judge.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(in))
	for i, e := range in {
		out[i] = LeaderboardEntry{Username: e.Username, Score: e.Score, Time: e.Time, Rank: e.Rank}
	}
	return out
}
