package memory

import (
	"sync"
	"time"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/session"

	"github.com/patrickmn/go-cache"
)

// SessionStateRepository holds the per-user session state. Streaming
// goroutines and request handlers touch the same state concurrently, so every
// read-modify-write goes through Update under the repository lock and reads
// get a snapshot with its own thread slice.
type SessionStateRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionStateRepository() *SessionStateRepository {
	// Idle sessions expire after an hour; expired entries are purged every
	// ten minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionStateRepository{
		cache: c,
	}
}

func (r *SessionStateRepository) Save(state *session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(state.UserID, state, cache.DefaultExpiration)
}

// Get returns a snapshot of the user's state. Callers must not write through
// the result; mutations go through Update.
func (r *SessionStateRepository) Get(userID string) (*session.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(userID); found {
		return snapshot(x.(*session.State)), true
	}
	return nil, false
}

// Update applies fn to the latest stored state, creating an empty state for
// the user when none exists. The lock serializes concurrent mutations so none
// of them is lost.
func (r *SessionStateRepository) Update(userID string, fn func(state *session.State)) *session.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var state *session.State
	if x, found := r.cache.Get(userID); found {
		state = x.(*session.State)
	} else {
		state = &session.State{UserID: userID}
	}
	fn(state)
	r.cache.Set(userID, state, cache.DefaultExpiration)
	return snapshot(state)
}

func (r *SessionStateRepository) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(userID)
}

func snapshot(state *session.State) *session.State {
	cp := *state
	cp.Threads = append([]*entity.Thread{}, state.Threads...)
	return &cp
}
