package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jpalmerr/contestwatch/internal/metrics"
)

var (
	// ErrInvalidInterval is returned when an enabled [Config] has a
	// non-positive interval.
	ErrInvalidInterval = errors.New("poller: interval must be positive when enabled")

	// ErrNilAction is returned by [Start] when no action is supplied.
	ErrNilAction = errors.New("poller: action must not be nil")
)

// Action is the operation repeated on every tick.
//
// The context carries the values of the scope passed to [Start] together
// with the [Tick] metadata, but it is never cancelled by the poller: an
// invocation that is in flight when the poller is deactivated runs to
// completion. Use [Active] to find out whether the result is still wanted.
type Action func(ctx context.Context)

// Config controls when a [Poller] is armed.
type Config struct {
	// Interval is the period between ticks. Must be positive when Enabled.
	Interval time.Duration

	// Enabled arms the poller. A disabled poller invokes nothing.
	Enabled bool
}

// Validate reports misconfiguration. A disabled config is always valid.
func (c Config) Validate() error {
	if c.Enabled && c.Interval <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidInterval, c.Interval)
	}
	return nil
}

// State is the lifecycle state of a [Poller].
type State int

const (
	// StateIdle means no ticker is live.
	StateIdle State = iota

	// StateArmed means a ticker is live and ticks invoke the action.
	StateArmed
)

// String returns "idle" or "armed".
func (s State) String() string {
	if s == StateArmed {
		return "armed"
	}
	return "idle"
}

// handle is the live ticker of one arming. Only the owning Poller touches it.
type handle struct {
	ticker clockwork.Ticker
	done   chan struct{}
	live   atomic.Bool

	// running counts invocations started by this arming that have not
	// returned. Overlap skipping looks at this arming only.
	running atomic.Int64
}

// Poller repeatedly invokes an [Action] while armed.
//
// A Poller is created with [Start] and is safe for concurrent use. It is a
// self-contained value: independent pollers (for example the leaderboard
// refresh and the submission status refresh) share no state.
type Poller struct {
	name        string
	clock       clockwork.Clock
	logger      *slog.Logger
	skipOverlap bool

	// scope keeps the values of the context given to Start, without its
	// cancellation, for the contexts handed to actions.
	scope context.Context

	// action is the single mutable cell read fresh on every tick.
	action atomic.Pointer[Action]

	mu      sync.Mutex
	cfg     Config
	current *handle
	stopped bool
	release func() bool
	seq     uint64

	inflight sync.WaitGroup
}

// Start creates a [Poller] owned by the scope ctx and applies cfg.
//
// If cfg is enabled the action is invoked once immediately (on its own
// goroutine) and a ticker with period cfg.Interval is armed. If cfg is
// disabled nothing is invoked until [Poller.Update] enables it.
//
// Cancelling ctx ends the scope and stops the poller exactly like
// [Poller.Stop]. If ctx is nil, context.Background() is used. If ctx is
// already cancelled the returned poller is stopped and never invokes the
// action.
//
// Returns [ErrNilAction] or [ErrInvalidInterval] on misconfiguration.
func Start(ctx context.Context, action Action, cfg Config, opts ...Option) (*Poller, error) {
	if action == nil {
		return nil, ErrNilAction
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := &Poller{
		name:   "poller",
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
		scope:  context.WithoutCancel(ctx),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.action.Store(&action)

	p.mu.Lock()
	p.cfg = cfg
	if ctx.Err() != nil {
		p.stopped = true
		p.mu.Unlock()
		return p, nil
	}
	if cfg.Enabled {
		p.arm()
	}
	p.mu.Unlock()

	stop := context.AfterFunc(ctx, p.Stop)

	p.mu.Lock()
	p.release = stop
	p.mu.Unlock()

	return p, nil
}

// Name returns the name used in logs and metrics.
func (p *Poller) Name() string {
	return p.name
}

// SetAction replaces the action invoked by subsequent ticks.
//
// The ticker is not re-armed, so the schedule keeps its phase. A nil action
// is ignored.
func (p *Poller) SetAction(action Action) {
	if action == nil {
		return
	}
	p.action.Store(&action)
}

// Update applies a new configuration.
//
// An identical configuration is a no-op. Otherwise the live ticker, if any,
// is cancelled before anything new is armed; an enabled configuration then
// arms a fresh ticker and invokes the action immediately. Update on a
// stopped poller does nothing.
func (p *Poller) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || cfg == p.cfg {
		return nil
	}

	p.disarm()
	p.cfg = cfg
	if cfg.Enabled {
		p.arm()
	}
	return nil
}

// Config returns the current configuration.
func (p *Poller) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// State reports whether a ticker is currently live.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		return StateArmed
	}
	return StateIdle
}

// Stop cancels the live ticker and detaches the poller from its scope.
//
// No tick fires once Stop has returned. Invocations already in flight are
// not aborted. Stop is idempotent and safe to call concurrently.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.disarm()
	release := p.release
	p.release = nil
	p.mu.Unlock()

	if release != nil {
		release()
	}
	p.logger.Debug("poller stopped", "poller", p.name)
}

// Shutdown stops the poller and waits for in-flight invocations to finish.
//
// Returns an error if ctx ends first; the invocations keep running.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.Stop()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poller %s: waiting for in-flight invocations: %w", p.name, ctx.Err())
	}
}

// arm creates a new handle, fires the immediate invocation and starts the
// tick loop. Caller must hold p.mu.
func (p *Poller) arm() {
	h := &handle{
		ticker: p.clock.NewTicker(p.cfg.Interval),
		done:   make(chan struct{}),
	}
	h.live.Store(true)
	p.current = h

	p.logger.Debug("poller armed", "poller", p.name, "interval", p.cfg.Interval.String())

	p.fire(h)
	go p.loop(h)
}

// disarm cancels the live handle, if any. Caller must hold p.mu.
func (p *Poller) disarm() {
	h := p.current
	if h == nil {
		return
	}
	p.current = nil
	h.live.Store(false)
	h.ticker.Stop()
	close(h.done)

	p.logger.Debug("poller disarmed", "poller", p.name)
}

// loop forwards ticks of one handle until it is disarmed.
func (p *Poller) loop(h *handle) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.Chan():
			p.mu.Lock()
			// a tick may race with disarm; only the live handle may fire
			if p.current == h {
				p.fire(h)
			}
			p.mu.Unlock()
		}
	}
}

// fire starts one invocation of the current action. Caller must hold p.mu.
func (p *Poller) fire(h *handle) {
	if p.skipOverlap && h.running.Load() > 0 {
		metrics.PollSkippedTotal.WithLabelValues(p.name).Inc()
		p.logger.Debug("tick skipped, previous invocation still running", "poller", p.name)
		return
	}

	action := *p.action.Load()
	tick := Tick{
		Poller: p.name,
		Seq:    p.seq,
		At:     p.clock.Now(),
	}
	p.seq++

	ctx := context.WithValue(p.scope, tickKey{}, tickState{tick: tick, h: h})

	p.inflight.Add(1)
	h.running.Add(1)
	metrics.PollInvocationsTotal.WithLabelValues(p.name).Inc()
	metrics.PollInFlight.WithLabelValues(p.name).Inc()

	go p.invoke(ctx, h, action)
}

// invoke runs an action with panic recovery. A panicking action is logged
// with a correlation ID and does not affect later ticks.
func (p *Poller) invoke(ctx context.Context, h *handle, action Action) {
	defer p.inflight.Done()
	defer func() {
		h.running.Add(-1)
		metrics.PollInFlight.WithLabelValues(p.name).Dec()
	}()
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			metrics.PollPanicsTotal.WithLabelValues(p.name).Inc()
			p.logger.Error("poll action panic",
				"poller", p.name,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	action(ctx)
}
