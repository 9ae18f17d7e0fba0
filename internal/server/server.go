package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/contestwatch/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// maxSubmitBodySize bounds POST /api/submissions payloads.
	maxSubmitBodySize = 1 << 20

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "contestwatch"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Server handles HTTP requests for the contest workspace dashboard and API.
//
// Routes:
//   - GET /: Serves the embedded workspace page
//   - GET /api/workspace: Contest, problems and identity as JSON
//   - GET /api/leaderboard: Latest leaderboard snapshot as JSON
//   - GET /api/submissions: Known submissions as JSON
//   - GET /api/submissions/{id}: One submission as JSON
//   - POST /api/submissions: Submits a solution through the [Workspace]
//   - GET /api/sse: Server-Sent Events stream of store events
//   - GET /metrics: Prometheus exposition
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	workspace  Workspace
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store implementation for workspace state
//   - ws: Workspace serving identity and submissions (may be nil)
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "contestwatch" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, ws Workspace, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		store:     st,
		workspace: ws,
		port:      port,
		assets:    assets,
		title:     title,
		logger:    logger,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("GET /api/workspace", s.handleWorkspace)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/submissions", s.handleSubmissions)
	mux.HandleFunc("GET /api/submissions/{id}", s.handleSubmission)
	mux.HandleFunc("POST /api/submissions", s.handleSubmit)
	mux.HandleFunc("GET /api/sse", s.handleSSE)
	mux.Handle("GET /metrics", promhttp.Handler())

	// serve dashboard assets
	if s.assets != nil {
		mux.HandleFunc("GET /", s.handleDashboard)
	}

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the workspace page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// read index.html from embedded assets
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	if s.workspace == nil {
		s.writeError(w, http.StatusServiceUnavailable, "workspace not configured")
		return
	}
	s.writeJSON(w, http.StatusOK, s.workspace.Info())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.store.Leaderboard()
	if !ok {
		// nothing fetched yet; the client keeps its loading state
		s.writeJSON(w, http.StatusOK, store.LeaderboardSnapshot{Entries: []store.LeaderboardEntry{}})
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Submissions())
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.store.Submission(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

// handleSubmit forwards a solution to the workspace.
//
// Responds 202 with the submission id, 400 for a malformed body or a
// [SubmitError] with that code, 409 while another submission is evaluated,
// and 502 when the judge API rejected or failed the request.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.workspace == nil {
		s.writeError(w, http.StatusServiceUnavailable, "workspace not configured")
		return
	}

	var req SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	id, err := s.workspace.Submit(r.Context(), req)
	if err != nil {
		var subErr *SubmitError
		if errors.As(err, &subErr) {
			s.writeError(w, subErr.Code, subErr.Error())
			return
		}
		s.logger.Warn("submission failed", "problem_id", req.ProblemID, "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, SubmitResponse{SubmissionID: id})
}

// handleSSE streams store events via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before reading the initial state so no event is lost in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, event := range s.initialEvents() {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	// stream updates
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

// initialEvents replays the current state: the leaderboard snapshot, then
// submissions oldest first so clients end on the newest.
func (s *Server) initialEvents() []store.Event {
	var events []store.Event
	if snapshot, ok := s.store.Leaderboard(); ok {
		events = append(events, store.Event{Type: store.EventLeaderboard, Leaderboard: &snapshot})
	}
	subs := s.store.Submissions()
	for i := len(subs) - 1; i >= 0; i-- {
		events = append(events, store.Event{Type: store.EventSubmission, Submission: &subs[i]})
	}
	return events
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
