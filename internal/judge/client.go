package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/contestwatch/internal/metrics"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; the client talks to a single judge host
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
	defaultRequestTimeout      = 10 * time.Second
)

// RequestIDHeader carries a fresh UUID on every request for server-side tracing.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the judge API.
//
// Client uses per-request timeouts via context rather than a global timeout.
// Response bodies are limited to 1MB. Every call is recorded in the
// contestwatch_api_* metrics.
type Client struct {
	baseURL    *url.URL
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a judge API [Client] for baseURL.
//
// baseURL must be an absolute http or https URL; a path prefix is kept
// (e.g. "https://judge.example.com/backend"). A non-positive timeout uses
// the 10 second default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		baseURL: u,
		timeout: timeout,
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}, nil
}

// BaseURL returns the judge API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Contest fetches contest details.
func (c *Client) Contest(ctx context.Context, contestID string) (Contest, error) {
	var out Contest
	err := c.do(ctx, "contest", http.MethodGet, c.path("api", "contests", contestID), nil, &out)
	return out, err
}

// Problems fetches the problems of a contest.
func (c *Client) Problems(ctx context.Context, contestID string) ([]Problem, error) {
	var out []Problem
	err := c.do(ctx, "problems", http.MethodGet, c.path("api", "contests", contestID, "problems"), nil, &out)
	return out, err
}

// Leaderboard fetches the current ranking of a contest.
func (c *Client) Leaderboard(ctx context.Context, contestID string) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := c.do(ctx, "leaderboard", http.MethodGet, c.path("api", "contests", contestID, "leaderboard"), nil, &out)
	return out, err
}

// Submit sends a solution for judging and returns the new submission ID.
func (c *Client) Submit(ctx context.Context, req SubmissionRequest) (SubmissionResponse, error) {
	var out SubmissionResponse
	if err := c.do(ctx, "submit", http.MethodPost, c.path("api", "submissions"), req, &out); err != nil {
		return SubmissionResponse{}, err
	}
	if out.SubmissionID == "" {
		return SubmissionResponse{}, fmt.Errorf("submit: response has no submission id")
	}
	return out, nil
}

// SubmissionStatus fetches the judging state of a submission.
func (c *Client) SubmissionStatus(ctx context.Context, submissionID string) (SubmissionStatus, error) {
	var out SubmissionStatus
	err := c.do(ctx, "submission_status", http.MethodGet, c.path("api", "submissions", submissionID), nil, &out)
	return out, err
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// path joins escaped segments onto the base URL.
func (c *Client) path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}

// do performs one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, target string, in, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveAPIRequest(op, time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("%s: failed to read response body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
