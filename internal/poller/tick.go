package poller

import (
	"context"
	"time"
)

// Tick describes the invocation an action is running for.
type Tick struct {
	// Poller is the name of the poller that issued the invocation.
	Poller string

	// Seq numbers invocations of one poller from zero, across re-arms.
	Seq uint64

	// At is the clock reading when the invocation was issued.
	At time.Time
}

type tickKey struct{}

type tickState struct {
	tick Tick
	h    *handle
}

// TickFrom returns the [Tick] carried by an action's context.
func TickFrom(ctx context.Context) (Tick, bool) {
	st, ok := ctx.Value(tickKey{}).(tickState)
	if !ok {
		return Tick{}, false
	}
	return st.tick, true
}

// Active reports whether the arming that issued this invocation is still
// live. It turns false as soon as the poller is disabled, re-timed, stopped
// or its scope ends, so an action can drop results that arrive late.
//
// Returns false for a context that did not come from a poller.
func Active(ctx context.Context) bool {
	st, ok := ctx.Value(tickKey{}).(tickState)
	if !ok || st.h == nil {
		return false
	}
	return st.h.live.Load()
}
