// Package poller provides the interval-polling primitive used by contestwatch.
//
// A [Poller] invokes a caller-supplied [Action] immediately on activation and
// then on every tick of a fixed interval. The action lives in a single
// mutable cell: [Poller.SetAction] replaces it without re-arming the ticker,
// so the phase of the schedule is preserved and the next tick always calls
// the latest action.
//
// The main components are:
//
//   - [Start]: creates a Poller bound to a scope (a context) and arms it
//   - [Poller.Update]: enables, disables or re-times the poller
//   - [Poller.Stop]: the idempotent disposer
//   - [Poller.Shutdown]: Stop plus a bounded wait for in-flight invocations
//   - [Active]: lets an action discover that its arming was cancelled
//
// Each Poller owns at most one live ticker at a time. Invocations run on
// their own goroutines and are not awaited by the scheduler, so a slow action
// may overlap with the next tick unless [WithSkipOverlap] is used.
//
// Users of the contestwatch library should not need to interact with this
// package directly. Polling is configured through the main contestwatch
// package.
package poller
