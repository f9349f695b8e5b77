package optimistic

import (
	"context"
	"errors"
	"testing"
	"time"
)

type record struct {
	Pinned    bool
	UpdatedAt time.Time
}

func TestMutateRemoteSuccess(t *testing.T) {
	var committed []record
	serverTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	err := Mutate(context.Background(),
		record{Pinned: false},
		func(r record) record { r.Pinned = true; return r },
		func(_ context.Context, r record) (*record, error) {
			// The store normalizes the timestamp the local apply left zero.
			r.UpdatedAt = serverTime
			return &r, nil
		},
		func(r record) { committed = append(committed, r) },
	)

	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if len(committed) != 2 {
		t.Fatalf("commits = %d, want 2 (optimistic then canonical)", len(committed))
	}
	if !committed[0].Pinned || !committed[0].UpdatedAt.IsZero() {
		t.Errorf("first commit = %+v, want optimistic local value", committed[0])
	}
	if !committed[1].UpdatedAt.Equal(serverTime) {
		t.Errorf("second commit UpdatedAt = %v, want canonical %v", committed[1].UpdatedAt, serverTime)
	}
}

func TestMutateRemoteFailureReverts(t *testing.T) {
	var committed []record
	wantErr := errors.New("store unavailable")

	err := Mutate(context.Background(),
		record{Pinned: false},
		func(r record) record { r.Pinned = true; return r },
		func(_ context.Context, _ record) (*record, error) { return nil, wantErr },
		func(r record) { committed = append(committed, r) },
	)

	if !errors.Is(err, wantErr) {
		t.Fatalf("Mutate() error = %v, want %v", err, wantErr)
	}
	if len(committed) != 2 {
		t.Fatalf("commits = %d, want 2 (optimistic then revert)", len(committed))
	}
	if !committed[0].Pinned {
		t.Error("first commit not pinned, want the optimistic value")
	}
	if committed[1].Pinned {
		t.Error("second commit still pinned, want the pre-mutation snapshot")
	}
}

func TestMutateNilCanonicalKeepsLocal(t *testing.T) {
	var committed []record

	err := Mutate(context.Background(),
		record{},
		func(r record) record { r.Pinned = true; return r },
		func(_ context.Context, _ record) (*record, error) { return nil, nil },
		func(r record) { committed = append(committed, r) },
	)

	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if len(committed) != 1 {
		t.Fatalf("commits = %d, want 1 (local value stands)", len(committed))
	}
	if !committed[0].Pinned {
		t.Error("committed value not pinned, want the applied local value")
	}
}
