package contestwatch

import (
	"context"
	"sync"
	"testing"
)

func TestCallbacks_PanicRecovery(t *testing.T) {
	_, apiURL := newFakeJudge(t)

	var mu sync.Mutex
	calls := 0
	joinedWorkspace(t, apiURL,
		WithLeaderboardCallback(func(LeaderboardUpdate) { panic("boom") }),
		WithLeaderboardCallback(func(LeaderboardUpdate) {
			mu.Lock()
			calls++
			mu.Unlock()
		}),
	)

	// the second callback still runs on every refresh
	waitFor(t, "repeated refreshes", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	})
}

func TestCallbacks_ExecutionOrder(t *testing.T) {
	_, apiURL := newFakeJudge(t)

	var mu sync.Mutex
	var order []int
	done := false
	record := func(n int) func(SubmissionResult) {
		return func(r SubmissionResult) {
			mu.Lock()
			order = append(order, n)
			if n == 3 && r.Status.IsTerminal() {
				done = true
			}
			mu.Unlock()
		}
	}

	ws := joinedWorkspace(t, apiURL,
		WithSubmissionCallback(record(1)),
		WithSubmissionCallback(record(2)),
		WithSubmissionCallback(record(3)),
	)

	if _, err := ws.Submit(context.Background(), "p1", "python", "print(1)"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitFor(t, "verdict", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return done
	})

	mu.Lock()
	defer mu.Unlock()
	if len(order)%3 != 0 || len(order) == 0 {
		t.Fatalf("callback calls = %v, want whole rounds of 3", order)
	}
	for i, n := range order {
		if n != i%3+1 {
			t.Fatalf("callback order = %v, want registration order each round", order)
		}
	}
}

func TestCallbacks_NoSharedEntries(t *testing.T) {
	_, apiURL := newFakeJudge(t)

	got := make(chan LeaderboardUpdate, 1)
	ws := joinedWorkspace(t, apiURL, WithLeaderboardCallback(func(u LeaderboardUpdate) {
		select {
		case got <- u:
		default:
		}
	}))

	update := <-got
	if len(update.Entries) == 0 {
		t.Fatal("update has no entries")
	}
	update.Entries[0].Username = "mallory"

	if name := ws.Leaderboard().Entries[0].Username; name != "ada" {
		t.Errorf("Leaderboard() username = %q after callback mutation, want ada", name)
	}
}

func TestCallbacks_SubmissionFields(t *testing.T) {
	_, apiURL := newFakeJudge(t)

	log := &submissionLog{}
	ws := joinedWorkspace(t, apiURL, WithSubmissionCallback(log.record))

	id, err := ws.Submit(context.Background(), "p2", "cpp", "int main() {}")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitFor(t, "verdict", func() bool {
		statuses := log.statuses(id)
		return len(statuses) > 0 && statuses[len(statuses)-1].IsTerminal()
	})

	log.mu.Lock()
	defer log.mu.Unlock()
	for _, r := range log.results {
		if r.ID != id || r.ProblemID != "p2" || r.Language != "cpp" {
			t.Errorf("callback result = %+v, want id %s problem p2 language cpp", r, id)
		}
		if r.UpdatedAt.IsZero() {
			t.Errorf("callback result %s has zero UpdatedAt", r.Status)
		}
	}
}
