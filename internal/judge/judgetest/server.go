// Package judgetest provides an in-memory fake of the judge API for tests
// and local demos.
//
// The fake serves the same routes as the real judge. Every status poll of a
// submission advances it one step through a script (Queued, Running,
// Accepted by default), so pollers observe a realistic progression.
package judgetest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/jpalmerr/contestwatch/internal/judge"
)

// Operation names accepted by [Server.FailWith].
const (
	OpContest          = "contest"
	OpProblems         = "problems"
	OpLeaderboard      = "leaderboard"
	OpSubmit           = "submit"
	OpSubmissionStatus = "submission_status"
)

type submission struct {
	req  judge.SubmissionRequest
	step int
}

type failure struct {
	code int
	body string
}

// Server is a fake judge API. The zero value is not usable; use [New].
type Server struct {
	mu           sync.Mutex
	contests     map[string]judge.Contest
	problems     map[string][]judge.Problem
	leaderboards map[string][]judge.LeaderboardEntry
	submissions  map[string]*submission
	order        []string
	script       []judge.SubmissionStatus
	failures     map[string]failure
	hits         map[string]int
}

// DefaultScript is the status progression used unless [Server.SetScript] is called.
func DefaultScript() []judge.SubmissionStatus {
	score := 100.0
	elapsed := 0.42
	return []judge.SubmissionStatus{
		{Status: "Queued"},
		{Status: "Running"},
		{Status: "Accepted", Verdict: "All test cases passed", Score: &score, Time: &elapsed},
	}
}

// New returns an empty fake judge.
func New() *Server {
	return &Server{
		contests:     make(map[string]judge.Contest),
		problems:     make(map[string][]judge.Problem),
		leaderboards: make(map[string][]judge.LeaderboardEntry),
		submissions:  make(map[string]*submission),
		script:       DefaultScript(),
		failures:     make(map[string]failure),
		hits:         make(map[string]int),
	}
}

// AddContest registers a contest with its problems and an empty leaderboard.
func (s *Server) AddContest(c judge.Contest, problems ...judge.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[c.ContestID] = c
	s.problems[c.ContestID] = append([]judge.Problem(nil), problems...)
	if _, ok := s.leaderboards[c.ContestID]; !ok {
		s.leaderboards[c.ContestID] = []judge.LeaderboardEntry{}
	}
}

// SetLeaderboard replaces the leaderboard of a contest.
func (s *Server) SetLeaderboard(contestID string, entries []judge.LeaderboardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboards[contestID] = append([]judge.LeaderboardEntry(nil), entries...)
}

// SetScript replaces the status progression for submissions created afterwards
// and for those still in progress. The script must not be empty.
func (s *Server) SetScript(script ...judge.SubmissionStatus) {
	if len(script) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append([]judge.SubmissionStatus(nil), script...)
}

// FailWith makes every request of the given operation fail with code and body
// until [Server.Recover] is called.
func (s *Server) FailWith(op string, code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{code: code, body: body}
}

// Recover clears a failure set by [Server.FailWith].
func (s *Server) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// Hits returns how many requests of an operation were served (failed ones included).
func (s *Server) Hits(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[op]
}

// Submissions returns the submissions received so far, oldest first.
func (s *Server) Submissions() []judge.SubmissionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]judge.SubmissionRequest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.submissions[id].req)
	}
	return out
}

// Handler returns the HTTP handler serving the judge API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/contests/{contestId}", s.handleContest)
	mux.HandleFunc("GET /api/contests/{contestId}/problems", s.handleProblems)
	mux.HandleFunc("GET /api/contests/{contestId}/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("POST /api/submissions", s.handleSubmit)
	mux.HandleFunc("GET /api/submissions/{submissionId}", s.handleSubmissionStatus)
	return mux
}

// begin counts a hit and reports whether an injected failure was written.
func (s *Server) begin(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	s.hits[op]++
	f, failing := s.failures[op]
	s.mu.Unlock()

	if failing {
		http.Error(w, f.body, f.code)
		return true
	}
	return false
}

func (s *Server) handleContest(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, OpContest) {
		return
	}
	s.mu.Lock()
	c, ok := s.contests[r.PathValue("contestId")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, OpProblems) {
		return
	}
	s.mu.Lock()
	problems, ok := s.problems[r.PathValue("contestId")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, problems)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, OpLeaderboard) {
		return
	}
	s.mu.Lock()
	entries, ok := s.leaderboards[r.PathValue("contestId")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, OpSubmit) {
		return
	}

	var req judge.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Malformed submission", http.StatusBadRequest)
		return
	}
	for field, value := range map[string]string{
		"contestId": req.ContestID,
		"problemId": req.ProblemID,
		"username":  req.Username,
		"language":  req.Language,
		"code":      req.Code,
	} {
		if value == "" {
			http.Error(w, field+" is required", http.StatusBadRequest)
			return
		}
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.submissions[id] = &submission{req: req}
	s.order = append(s.order, id)
	s.mu.Unlock()

	writeJSON(w, http.StatusAccepted, judge.SubmissionResponse{SubmissionID: id})
}

func (s *Server) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	if s.begin(w, OpSubmissionStatus) {
		return
	}

	s.mu.Lock()
	sub, ok := s.submissions[r.PathValue("submissionId")]
	var status judge.SubmissionStatus
	if ok {
		step := sub.step
		if step >= len(s.script) {
			step = len(s.script) - 1
		}
		status = s.script[step]
		sub.step++
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// DemoContestID is the contest registered by [NewDemo].
const DemoContestID = "winter-open"

// NewDemo returns a fake judge with a sample contest, three problems and a
// small leaderboard, for local demos.
func NewDemo() *Server {
	s := New()
	s.AddContest(
		judge.Contest{
			ContestID:   DemoContestID,
			Name:        "Winter Open",
			Description: "Three warm up problems. Ranking by score, then total time.",
		},
		judge.Problem{
			ID:         "two-sum",
			Title:      "Two Sum",
			Statement:  "Read two integers a and b from standard input and print a + b.",
			Difficulty: "Easy",
		},
		judge.Problem{
			ID:         "grid-paths",
			Title:      "Grid Paths",
			Statement:  "Count the monotone lattice paths across an n by m grid, modulo 1000000007.",
			Difficulty: "Medium",
		},
		judge.Problem{
			ID:         "interval-cover",
			Title:      "Interval Cover",
			Statement:  "Choose the fewest intervals whose union covers [0, L], or print -1.",
			Difficulty: "Hard",
		},
	)
	s.SetLeaderboard(DemoContestID, []judge.LeaderboardEntry{
		{Username: "grace", Score: 300, Time: 2710, Rank: 1},
		{Username: "linus", Score: 200, Time: 1835, Rank: 2},
		{Username: "barbara", Score: 100, Time: 412, Rank: 3},
	})
	return s
}
