package contestwatch

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func requiredOptions() []Option {
	return []Option{
		WithAPIBaseURL("http://localhost:8081"),
		WithContest("winter-open"),
		WithUsername("Ada Lovelace"),
	}
}

func TestNew_Valid(t *testing.T) {
	ws, err := New(requiredOptions()...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if ws.ContestID() != "winter-open" {
		t.Errorf("ContestID() = %q, want %q", ws.ContestID(), "winter-open")
	}
	if ws.Username() != "Ada Lovelace" {
		t.Errorf("Username() = %q, want %q", ws.Username(), "Ada Lovelace")
	}
}

func TestNew_Defaults(t *testing.T) {
	ws, err := New(requiredOptions()...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if ws.Port() != 8080 {
		t.Errorf("Port() = %v, want 8080", ws.Port())
	}
	if ws.LeaderboardInterval() != 20*time.Second {
		t.Errorf("LeaderboardInterval() = %v, want 20s", ws.LeaderboardInterval())
	}
	if ws.SubmissionInterval() != 2500*time.Millisecond {
		t.Errorf("SubmissionInterval() = %v, want 2.5s", ws.SubmissionInterval())
	}
	if ws.DefaultLanguage() != "python" {
		t.Errorf("DefaultLanguage() = %q, want python", ws.DefaultLanguage())
	}
}

func TestNew_TrimsIdentity(t *testing.T) {
	ws, err := New(
		WithAPIBaseURL("http://localhost:8081"),
		WithContest("  winter-open\t"),
		WithUsername("\nAda "),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ws.ContestID() != "winter-open" || ws.Username() != "Ada" {
		t.Errorf("identity = %q/%q, want trimmed", ws.ContestID(), ws.Username())
	}
}

func TestNew_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
		wantMsg string
	}{
		{
			name:    "no contest",
			opts:    []Option{WithAPIBaseURL("http://localhost:8081"), WithUsername("ada")},
			wantErr: ErrContestRequired,
		},
		{
			name:    "blank contest",
			opts:    []Option{WithAPIBaseURL("http://localhost:8081"), WithContest("   "), WithUsername("ada")},
			wantErr: ErrContestRequired,
		},
		{
			name:    "no username",
			opts:    []Option{WithAPIBaseURL("http://localhost:8081"), WithContest("c")},
			wantErr: ErrUsernameRequired,
		},
		{
			name:    "blank username",
			opts:    []Option{WithAPIBaseURL("http://localhost:8081"), WithContest("c"), WithUsername(" ")},
			wantErr: ErrUsernameRequired,
		},
		{
			name:    "no api",
			opts:    []Option{WithContest("c"), WithUsername("ada")},
			wantMsg: "api base url is required",
		},
		{
			name:    "bad api scheme",
			opts:    []Option{WithAPIBaseURL("ftp://judge"), WithContest("c"), WithUsername("ada")},
			wantMsg: "scheme must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("New() error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestOptions_Validation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty api", WithAPIBaseURL("  ")},
		{"port zero", WithPort(0)},
		{"port too high", WithPort(65536)},
		{"negative port", WithPort(-1)},
		{"zero leaderboard interval", WithLeaderboardInterval(0)},
		{"negative submission interval", WithSubmissionInterval(-time.Second)},
		{"zero request timeout", WithRequestTimeout(0)},
		{"unknown language", WithDefaultLanguage("cobol")},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append(requiredOptions(), tt.opt)
			if _, err := New(opts...); err == nil {
				t.Errorf("New() with %s: error = nil, want error", tt.name)
			}
		})
	}
}

func TestOptions_Applied(t *testing.T) {
	ws, err := New(append(requiredOptions(),
		WithPort(9090),
		WithLeaderboardInterval(30*time.Second),
		WithSubmissionInterval(time.Second),
		WithRequestTimeout(3*time.Second),
		WithDefaultLanguage("cpp"),
		WithTitle("Winter Open"),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if ws.Port() != 9090 {
		t.Errorf("Port() = %v, want 9090", ws.Port())
	}
	if ws.LeaderboardInterval() != 30*time.Second {
		t.Errorf("LeaderboardInterval() = %v, want 30s", ws.LeaderboardInterval())
	}
	if ws.SubmissionInterval() != time.Second {
		t.Errorf("SubmissionInterval() = %v, want 1s", ws.SubmissionInterval())
	}
	if ws.DefaultLanguage() != "cpp" {
		t.Errorf("DefaultLanguage() = %q, want cpp", ws.DefaultLanguage())
	}
	if ws.title != "Winter Open" {
		t.Errorf("title = %q, want %q", ws.title, "Winter Open")
	}
}

func TestWithDefaultLanguage_AllSupported(t *testing.T) {
	for _, lang := range Languages() {
		if _, err := New(append(requiredOptions(), WithDefaultLanguage(lang))...); err != nil {
			t.Errorf("WithDefaultLanguage(%q) error = %v", lang, err)
		}
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ws, err := New(append(requiredOptions(), WithLogger(logger))...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ws.logger.Info("probe")
	out := buf.String()
	if !strings.Contains(out, "probe") {
		t.Errorf("custom logger not used, got: %s", out)
	}
	if !strings.Contains(out, "contest=winter-open") {
		t.Errorf("logger should carry the contest attribute, got: %s", out)
	}
}

func TestCallbackOptions_NilIgnored(t *testing.T) {
	ws, err := New(append(requiredOptions(),
		WithLeaderboardCallback(nil),
		WithSubmissionCallback(nil),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(ws.leaderboardCallbacks) != 0 || len(ws.submissionCallbacks) != 0 {
		t.Error("nil callbacks should not be registered")
	}
}
