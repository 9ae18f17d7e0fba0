package poller

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Option configures a [Poller] in [Start].
type Option func(*Poller)

// WithName sets the name used in logs and metrics labels.
func WithName(name string) Option {
	return func(p *Poller) {
		if name != "" {
			p.name = name
		}
	}
}

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(p *Poller) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSkipOverlap makes a tick do nothing while a previous invocation of the
// same arming is still running. The immediate invocation of a new arming is
// never skipped. By default invocations may overlap.
func WithSkipOverlap() Option {
	return func(p *Poller) {
		p.skipOverlap = true
	}
}
