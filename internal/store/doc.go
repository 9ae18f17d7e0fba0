// Package store provides storage and pub/sub for workspace state.
//
// The store keeps the latest leaderboard snapshot of the joined contest and
// the known submissions keyed by id. Every change is published as an
// [Event] to subscribers, which the dashboard server streams to browsers
// over Server-Sent Events.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [LeaderboardSnapshot] and [Submission]: JSON representations of state
//
// Subscribers receive events via channels with non-blocking sends (slow
// subscribers miss events rather than block pollers).
package store
