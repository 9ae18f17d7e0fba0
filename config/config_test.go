package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
api_base_url: http://localhost:8081
contest_id: winter-open
username: Ada Lovelace
`

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Language != "python" {
		t.Errorf("Language = %q, want python", cfg.Language)
	}
	if cfg.RequestTimeout.Duration() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout.Duration())
	}
	if cfg.LeaderboardInterval.Duration() != 20*time.Second {
		t.Errorf("LeaderboardInterval = %v, want 20s", cfg.LeaderboardInterval.Duration())
	}
	if cfg.SubmissionInterval.Duration() != 2500*time.Millisecond {
		t.Errorf("SubmissionInterval = %v, want 2.5s", cfg.SubmissionInterval.Duration())
	}
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty", cfg.Title)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Winter Open
api_base_url: https://judge.example.com
contest_id: winter-open
username: Ada Lovelace
port: 9090
language: cpp
request_timeout: 5s
leaderboard_interval: 30s
submission_interval: 1s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Winter Open" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Winter Open")
	}
	if cfg.APIBaseURL != "https://judge.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.ContestID != "winter-open" || cfg.Username != "Ada Lovelace" {
		t.Errorf("identity = %q/%q", cfg.ContestID, cfg.Username)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Language != "cpp" {
		t.Errorf("Language = %q, want cpp", cfg.Language)
	}
	if cfg.RequestTimeout.Duration() != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout.Duration())
	}
	if cfg.LeaderboardInterval.Duration() != 30*time.Second {
		t.Errorf("LeaderboardInterval = %v, want 30s", cfg.LeaderboardInterval.Duration())
	}
	if cfg.SubmissionInterval.Duration() != time.Second {
		t.Errorf("SubmissionInterval = %v, want 1s", cfg.SubmissionInterval.Duration())
	}
}

func TestParse_TrimsIdentity(t *testing.T) {
	yaml := `
api_base_url: http://localhost:8081
contest_id: "  winter-open "
username: " Ada "
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.ContestID != "winter-open" || cfg.Username != "Ada" {
		t.Errorf("identity = %q/%q, want trimmed", cfg.ContestID, cfg.Username)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("CW_TEST_API", "http://judge.internal:8081")
	t.Setenv("CW_TEST_USER", "grace")

	yaml := `
api_base_url: ${CW_TEST_API}
contest_id: winter-open
username: ${CW_TEST_USER}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIBaseURL != "http://judge.internal:8081" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Username != "grace" {
		t.Errorf("Username = %q, want grace", cfg.Username)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
api_base_url: ${CW_TEST_UNSET_API:-http://localhost:8081}
contest_id: winter-open
username: ada
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8081" {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
api_base_url: ${CW_TEST_DEFINITELY_UNSET}
contest_id: winter-open
username: ada
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() error = nil, want error for missing env var")
	}
	if !strings.Contains(err.Error(), "CW_TEST_DEFINITELY_UNSET") {
		t.Errorf("error = %v, want mention of variable", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty document",
			yaml:    ``,
			wantErr: "api_base_url is required",
		},
		{
			name:    "missing scheme",
			yaml:    "api_base_url: localhost:8081\ncontest_id: c\nusername: u",
			wantErr: "scheme",
		},
		{
			name:    "bad scheme",
			yaml:    "api_base_url: ftp://judge\ncontest_id: c\nusername: u",
			wantErr: "must be http or https",
		},
		{
			name:    "missing contest",
			yaml:    "api_base_url: http://judge\nusername: u",
			wantErr: "contest_id is required",
		},
		{
			name:    "blank contest",
			yaml:    "api_base_url: http://judge\ncontest_id: '  '\nusername: u",
			wantErr: "contest_id is required",
		},
		{
			name:    "missing username",
			yaml:    "api_base_url: http://judge\ncontest_id: c",
			wantErr: "username is required",
		},
		{
			name:    "port too high",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nport: 70000",
			wantErr: "port must be between",
		},
		{
			name:    "unknown language",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nlanguage: cobol",
			wantErr: "language must be one of",
		},
		{
			name:    "request timeout too short",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nrequest_timeout: 100ms",
			wantErr: "request_timeout must be at least 1s",
		},
		{
			name:    "leaderboard interval too short",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nleaderboard_interval: 10ms",
			wantErr: "leaderboard_interval must be at least",
		},
		{
			name:    "submission interval too long",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nsubmission_interval: 2h",
			wantErr: "submission_interval must not exceed 1h",
		},
		{
			name:    "negative interval",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\nleaderboard_interval: -5s",
			wantErr: "leaderboard_interval must be at least",
		},
		{
			name:    "unknown field",
			yaml:    "api_base_url: http://judge\ncontest_id: c\nusername: u\npoll_interval: 10s",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("api_base_url: [unclosed"))
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want YAML parse error", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "leaderboard_interval: soon\n"))
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"500ms", 500 * time.Millisecond},
		{"2500ms", 2500 * time.Millisecond},
		{"20s", 20 * time.Second},
		{"1m30s", 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg, err := Parse([]byte(minimalYAML + "leaderboard_interval: " + tt.input + "\n"))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := cfg.LeaderboardInterval.Duration(); got != tt.want {
				t.Errorf("LeaderboardInterval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CW_TEST_HOST", "judge")
	t.Setenv("CW_TEST_EMPTY", "")

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "plain", false},
		{"http://${CW_TEST_HOST}:8081", "http://judge:8081", false},
		{"${CW_TEST_NOPE:-fallback}", "fallback", false},
		{"${CW_TEST_NOPE:-}", "", false},
		{"${CW_TEST_EMPTY:-fallback}", "", false},
		{"${CW_TEST_NOPE}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvVars(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contestwatch.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ContestID != "winter-open" {
		t.Errorf("ContestID = %q, want winter-open", cfg.ContestID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %v, want read failure", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "CW_TEST_DOTENV_USER"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	yaml := "api_base_url: http://localhost:8081\ncontest_id: c\nusername: ${" + key + "}\n"
	path := filepath.Join(dir, "contestwatch.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Username != "from-dotenv" {
		t.Errorf("Username = %q, want value from .env", cfg.Username)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	const key = "CW_TEST_DOTENV_KEEP"
	t.Setenv(key, "from-env")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-env" {
		t.Errorf("%s = %q, want existing value kept", key, got)
	}
}

func TestLoadDotEnv_NoFile(t *testing.T) {
	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil without .env", err)
	}
}
