package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jpalmerr/contestwatch/internal/metrics"
	"github.com/jpalmerr/contestwatch/internal/store"
)

type mockWorkspace struct {
	mu       sync.Mutex
	requests []SubmitRequest
	id       string
	err      error
}

func (m *mockWorkspace) Info() WorkspaceInfo {
	return WorkspaceInfo{
		Title:           "Winter Open",
		ContestID:       "winter-open",
		Username:        "ada",
		Contest:         &ContestInfo{ContestID: "winter-open", Name: "Winter Open"},
		Problems:        []ProblemInfo{{ID: "p1", Title: "Two Sum", Statement: "Add them"}},
		Languages:       []string{"python", "cpp"},
		DefaultLanguage: "python",
	}
}

func (m *mockWorkspace) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.id, m.err
}

func serve(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPI_Workspace(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), &mockWorkspace{}, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/workspace", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info WorkspaceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if info.ContestID != "winter-open" || info.Username != "ada" || len(info.Problems) != 1 {
		t.Errorf("info = %+v", info)
	}
}

func TestAPI_WorkspaceNotConfigured(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), nil, 0, nil, "", testLogger())

	if rec := serve(t, srv, http.MethodGet, "/api/workspace", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET status = %d, want 503", rec.Code)
	}
	if rec := serve(t, srv, http.MethodPost, "/api/submissions", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST status = %d, want 503", rec.Code)
	}
}

func TestAPI_Leaderboard(t *testing.T) {
	srv := NewServer(seededStore(), nil, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/leaderboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}

	var snap store.LeaderboardSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Username != "ada" {
		t.Errorf("entries = %+v", snap.Entries)
	}
}

func TestAPI_LeaderboardEmpty(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), nil, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/leaderboard", "")
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("body = %s, want empty entries array", rec.Body.String())
	}
}

func TestAPI_Submissions(t *testing.T) {
	srv := NewServer(seededStore(), nil, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/submissions", "")
	var subs []store.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &subs); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "sub-1" {
		t.Errorf("submissions = %+v", subs)
	}

	rec = serve(t, srv, http.MethodGet, "/api/submissions/sub-1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"Accepted"`) {
		t.Errorf("GET sub-1 = %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, srv, http.MethodGet, "/api/submissions/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET nope status = %d, want 404", rec.Code)
	}
}

func TestAPI_Submit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wsErr      error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "accepted",
			body:       `{"problemId":"p1","language":"python","code":"print(1)"}`,
			wantStatus: http.StatusAccepted,
			wantBody:   `"submissionId":"sub-9"`,
		},
		{
			name:       "malformed body",
			body:       `{"problemId":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
		{
			name:       "unknown field",
			body:       `{"problem":"p1"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
		{
			name:       "validation error",
			body:       `{"problemId":"p1","code":"  "}`,
			wsErr:      Invalid(errors.New("code cannot be empty")),
			wantStatus: http.StatusBadRequest,
			wantBody:   "code cannot be empty",
		},
		{
			name:       "in flight",
			body:       `{"problemId":"p1","code":"x"}`,
			wsErr:      Conflict(errors.New("a submission is already being evaluated")),
			wantStatus: http.StatusConflict,
			wantBody:   "already being evaluated",
		},
		{
			name:       "judge failure",
			body:       `{"problemId":"p1","code":"x"}`,
			wsErr:      errors.New("judge is restarting"),
			wantStatus: http.StatusBadGateway,
			wantBody:   "judge is restarting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &mockWorkspace{id: "sub-9", err: tt.wsErr}
			srv := NewServer(store.NewMemoryStore(), ws, 0, nil, "", testLogger())

			rec := serve(t, srv, http.MethodPost, "/api/submissions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want containing %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAPI_SubmitForwardsRequest(t *testing.T) {
	ws := &mockWorkspace{id: "sub-1"}
	srv := NewServer(store.NewMemoryStore(), ws, 0, nil, "", testLogger())

	serve(t, srv, http.MethodPost, "/api/submissions", `{"problemId":"p2","language":"cpp","code":"int main(){}"}`)

	if len(ws.requests) != 1 {
		t.Fatalf("workspace received %d requests, want 1", len(ws.requests))
	}
	want := SubmitRequest{ProblemID: "p2", Language: "cpp", Code: "int main(){}"}
	if ws.requests[0] != want {
		t.Errorf("request = %+v, want %+v", ws.requests[0], want)
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), nil, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodDelete, "/api/leaderboard", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAPI_Metrics(t *testing.T) {
	metrics.PollInvocationsTotal.WithLabelValues("api-test").Inc()
	srv := NewServer(store.NewMemoryStore(), nil, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `contestwatch_poll_invocations_total{poller="api-test"}`) {
		t.Errorf("metrics output missing poll counter")
	}
}
