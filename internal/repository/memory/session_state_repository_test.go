package memory

import (
	"sync"
	"testing"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/session"

	"github.com/google/uuid"
)

func TestSessionStateUpdateSerializesWrites(t *testing.T) {
	repo := NewSessionStateRepository()
	userID := uuid.NewString()

	const writers = 64
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			repo.Update(userID, func(state *session.State) {
				state.Threads = append(state.Threads, &entity.Thread{Id: uuid.New()})
			})
		}()
	}
	wg.Wait()

	state, ok := repo.Get(userID)
	if !ok {
		t.Fatal("Get after Update returned no state")
	}
	if len(state.Threads) != writers {
		t.Errorf("len(state.Threads) = %d, want %d", len(state.Threads), writers)
	}
}

func TestSessionStateGetReturnsSnapshot(t *testing.T) {
	repo := NewSessionStateRepository()
	userID := uuid.NewString()
	first := &entity.Thread{Id: uuid.New()}
	repo.Update(userID, func(state *session.State) {
		state.Threads = append(state.Threads, first)
		state.SelectedThreadID = first.Id.String()
	})

	snap, ok := repo.Get(userID)
	if !ok {
		t.Fatal("Get returned no state")
	}

	repo.Update(userID, func(state *session.State) {
		state.Threads = append([]*entity.Thread{{Id: uuid.New()}}, state.Threads...)
		state.SelectedThreadID = "changed"
	})

	if len(snap.Threads) != 1 {
		t.Errorf("snapshot len(Threads) = %d, want 1", len(snap.Threads))
	}
	if snap.SelectedThreadID != first.Id.String() {
		t.Errorf("snapshot SelectedThreadID = %q, want %q", snap.SelectedThreadID, first.Id.String())
	}
}

func TestSessionStateUpdateCreatesMissingState(t *testing.T) {
	repo := NewSessionStateRepository()
	userID := uuid.NewString()

	got := repo.Update(userID, func(state *session.State) {
		state.SelectedThreadID = "t1"
	})

	if got.UserID != userID {
		t.Errorf("UserID = %q, want %q", got.UserID, userID)
	}
	if got.SelectedThreadID != "t1" {
		t.Errorf("SelectedThreadID = %q, want %q", got.SelectedThreadID, "t1")
	}
}
