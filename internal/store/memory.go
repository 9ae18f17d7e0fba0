package store

import (
	"slices"
	"sync"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage with a publish-subscribe mechanism
// for real-time updates. Submissions are keyed by id, with new states
// replacing previous values.
//
// Subscribers receive events via buffered channels (buffer size 100). Events
// are sent non-blocking; if a subscriber's buffer is full, the event is dropped
// for that subscriber to prevent blocking the pollers.
type MemoryStore struct {
	mu          sync.RWMutex
	leaderboard *LeaderboardSnapshot
	submissions map[string]Submission
	order       []string
	subscribers map[chan Event]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		submissions: make(map[string]Submission),
		subscribers: make(map[chan Event]struct{}),
	}
}

// SetLeaderboard replaces the leaderboard snapshot and notifies all subscribers.
func (m *MemoryStore) SetLeaderboard(snapshot LeaderboardSnapshot) {
	snapshot = cloneSnapshot(snapshot)

	m.mu.Lock()
	m.leaderboard = &snapshot
	m.mu.Unlock()

	event := cloneSnapshot(snapshot)
	m.notifySubscribers(Event{Type: EventLeaderboard, Leaderboard: &event})
}

// SetLeaderboardError records a failed refresh. Entries and FetchedAt from
// the last successful refresh are kept; before any success both are empty.
func (m *MemoryStore) SetLeaderboardError(contestID, message string) {
	m.mu.Lock()
	var snapshot LeaderboardSnapshot
	if m.leaderboard != nil && m.leaderboard.ContestID == contestID {
		snapshot = cloneSnapshot(*m.leaderboard)
	} else {
		snapshot = LeaderboardSnapshot{ContestID: contestID, Entries: []LeaderboardEntry{}}
	}
	snapshot.Error = &message
	m.leaderboard = &snapshot
	event := cloneSnapshot(snapshot)
	m.mu.Unlock()

	m.notifySubscribers(Event{Type: EventLeaderboard, Leaderboard: &event})
}

// Leaderboard returns a copy of the current snapshot.
func (m *MemoryStore) Leaderboard() (LeaderboardSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.leaderboard == nil {
		return LeaderboardSnapshot{}, false
	}
	return cloneSnapshot(*m.leaderboard), true
}

// PutSubmission stores a submission and notifies all subscribers.
//
// The submission is stored using its ID as the key. Subsequent puts with
// the same id replace the previous value but keep its position.
func (m *MemoryStore) PutSubmission(sub Submission) {
	m.mu.Lock()
	if _, exists := m.submissions[sub.ID]; !exists {
		m.order = append(m.order, sub.ID)
	}
	m.submissions[sub.ID] = sub
	m.mu.Unlock()

	m.notifySubscribers(Event{Type: EventSubmission, Submission: &sub})
}

// Submission returns the submission with the given id.
func (m *MemoryStore) Submission(id string) (Submission, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.submissions[id]
	return sub, ok
}

// Submissions returns a snapshot of all submissions, most recently created first.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) Submissions() []Submission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Submission, 0, len(m.order))
	for _, id := range slices.Backward(m.order) {
		results = append(results, m.submissions[id])
	}
	return results
}

// Subscribe creates a new subscription and returns a channel for receiving events.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new events are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// events will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the event to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the event
// is dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(event Event) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// subscriber is slow, drop the event
		}
	}
}

func cloneSnapshot(s LeaderboardSnapshot) LeaderboardSnapshot {
	s.Entries = slices.Clone(s.Entries)
	if s.Entries == nil {
		s.Entries = []LeaderboardEntry{}
	}
	if s.Error != nil {
		msg := *s.Error
		s.Error = &msg
	}
	return s
}
