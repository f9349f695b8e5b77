package session

import (
	"context"
	"sync"
)

// ActiveStream tracks one in-flight aggregator response for a user.
type ActiveStream struct {
	ThreadID string // temp id until the thread-created event arrives
	Cancel   context.CancelFunc
}

// StreamRegistry holds the live cancel handles. A plain locked map rather
// than the expiring cache: a cancel func must never be dropped by TTL while
// its stream is still running.
type StreamRegistry struct {
	mu      sync.Mutex
	streams map[string]*ActiveStream // keyed by user id
}

func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{
		streams: make(map[string]*ActiveStream),
	}
}

func (r *StreamRegistry) Register(userID string, s *ActiveStream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[userID] = s
}

func (r *StreamRegistry) Get(userID string) (*ActiveStream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[userID]
	return s, ok
}

// Rekey updates the thread id of a running stream after the temp-to-real
// swap, so later switch-away checks compare against the permanent id.
func (r *StreamRegistry) Rekey(userID, threadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.streams[userID]; ok {
		s.ThreadID = threadID
	}
}

func (r *StreamRegistry) Release(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, userID)
}

// CancelFor cancels the user's in-flight stream, if any, and releases it.
func (r *StreamRegistry) CancelFor(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[userID]
	if !ok {
		return false
	}
	s.Cancel()
	delete(r.streams, userID)
	return true
}

// CancelAll is called on application teardown.
func (r *StreamRegistry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.streams {
		s.Cancel()
		delete(r.streams, id)
	}
}
