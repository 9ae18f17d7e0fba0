// Package config provides YAML configuration parsing for contestwatch.
//
// This package enables running contestwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Winter Open
//	api_base_url: ${JUDGE_API:-http://localhost:8081}
//	contest_id: winter-open
//	username: Ada Lovelace
//	port: 8080
//	language: python
//	request_timeout: 10s
//	leaderboard_interval: 20s
//	submission_interval: 2500ms
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	contestwatch "github.com/jpalmerr/contestwatch"
	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed polling interval for file configs.
// Keeps a typo like "20ms" from hammering the judge.
const minInterval = 500 * time.Millisecond

// Defaults applied by [Parse] for unset fields.
const (
	DefaultPort                = 8080
	DefaultLanguage            = "python"
	DefaultRequestTimeout      = 10 * time.Second
	DefaultLeaderboardInterval = 20 * time.Second
	DefaultSubmissionInterval  = 2500 * time.Millisecond
)

// Config is the root configuration structure for contestwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "contestwatch".
	Title string `yaml:"title"`

	// APIBaseURL is the judge API root, for example http://localhost:8081.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	APIBaseURL string `yaml:"api_base_url"`

	// ContestID identifies the contest to join.
	ContestID string `yaml:"contest_id"`

	// Username is the participant display name.
	Username string `yaml:"username"`

	// Port is the dashboard HTTP port. Defaults to 8080.
	Port int `yaml:"port"`

	// Language is the default submission language. Defaults to python.
	Language string `yaml:"language"`

	// RequestTimeout bounds each judge API request. Defaults to 10s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// LeaderboardInterval is the time between leaderboard refreshes.
	// Defaults to 20s.
	LeaderboardInterval Duration `yaml:"leaderboard_interval"`

	// SubmissionInterval is the time between submission status checks.
	// Defaults to 2500ms.
	SubmissionInterval Duration `yaml:"submission_interval"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadDotEnv loads a .env file from dir into the process environment when
// one exists. Variables already set are not overridden.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

// Load reads and parses a YAML configuration file.
//
// A .env file next to the config file is loaded first, so its variables
// are available for expansion. Returns an error if the file cannot be read
// or parsed.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in every string field. Unknown keys
// are rejected. Defaults are applied for Port, Language and the intervals.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.LeaderboardInterval == 0 {
		c.LeaderboardInterval = Duration(DefaultLeaderboardInterval)
	}
	if c.SubmissionInterval == 0 {
		c.SubmissionInterval = Duration(DefaultSubmissionInterval)
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for _, field := range []struct {
		name string
		ptr  *string
	}{
		{"title", &c.Title},
		{"api_base_url", &c.APIBaseURL},
		{"contest_id", &c.ContestID},
		{"username", &c.Username},
		{"language", &c.Language},
	} {
		expanded, err := expandEnvVars(*field.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.ptr = strings.TrimSpace(expanded)
	}

	if c.APIBaseURL == "" {
		return errors.New("api_base_url is required")
	}
	parsedURL, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("api_base_url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("api_base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if c.ContestID == "" {
		return errors.New("contest_id is required")
	}
	if c.Username == "" {
		return errors.New("username is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if languages := contestwatch.Languages(); !slices.Contains(languages, c.Language) {
		return fmt.Errorf("language must be one of %s, got %q", strings.Join(languages, ", "), c.Language)
	}

	if c.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout.Duration())
	}

	for _, iv := range []struct {
		name string
		d    Duration
	}{
		{"leaderboard_interval", c.LeaderboardInterval},
		{"submission_interval", c.SubmissionInterval},
	} {
		if iv.d.Duration() < minInterval {
			return fmt.Errorf("%s must be at least %s, got %s", iv.name, minInterval, iv.d.Duration())
		}
		if iv.d.Duration() > time.Hour {
			return fmt.Errorf("%s must not exceed 1h, got %s", iv.name, iv.d.Duration())
		}
	}

	return nil
}
