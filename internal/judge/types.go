package judge

// Contest describes a contest as returned by the judge API.
type Contest struct {
	ContestID   string `json:"contestId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Problem is a single contest problem.
type Problem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Statement  string `json:"statement"`
	Difficulty string `json:"difficulty,omitempty"`
}

// LeaderboardEntry is one ranked participant.
//
// Time is the accumulated solve time in seconds.
type LeaderboardEntry struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Time     float64 `json:"time"`
	Rank     int     `json:"rank"`
}

// SubmissionRequest is the payload of a new submission.
type SubmissionRequest struct {
	ContestID string `json:"contestId"`
	ProblemID string `json:"problemId"`
	Username  string `json:"username"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// SubmissionResponse is returned when a submission is accepted for judging.
type SubmissionResponse struct {
	SubmissionID string `json:"submissionId"`
}

// SubmissionStatus is the judging state of a submission.
//
// Status is a display string such as "Queued", "Running" or "Wrong Answer".
// Verdict, Score and Time are only present once judging has produced them.
type SubmissionStatus struct {
	Status  string   `json:"status"`
	Verdict string   `json:"verdict,omitempty"`
	Score   *float64 `json:"score,omitempty"`
	Time    *float64 `json:"time,omitempty"`
}
