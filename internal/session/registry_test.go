package session

import "testing"

func TestStreamRegistryRekey(t *testing.T) {
	r := NewStreamRegistry()
	r.Register("user-1", &ActiveStream{ThreadID: "temp-abc", Cancel: func() {}})

	r.Rekey("user-1", "real-id")

	s, ok := r.Get("user-1")
	if !ok {
		t.Fatal("stream missing after rekey")
	}
	if s.ThreadID != "real-id" {
		t.Errorf("ThreadID = %q, want %q", s.ThreadID, "real-id")
	}
}

func TestStreamRegistryCancelFor(t *testing.T) {
	r := NewStreamRegistry()

	if r.CancelFor("nobody") {
		t.Error("CancelFor on empty registry = true, want false")
	}

	cancelled := false
	r.Register("user-1", &ActiveStream{ThreadID: "t", Cancel: func() { cancelled = true }})

	if !r.CancelFor("user-1") {
		t.Error("CancelFor = false, want true")
	}
	if !cancelled {
		t.Error("cancel func not invoked")
	}
	if _, ok := r.Get("user-1"); ok {
		t.Error("stream still registered after cancel")
	}
}

func TestStreamRegistryCancelAll(t *testing.T) {
	r := NewStreamRegistry()
	count := 0
	r.Register("a", &ActiveStream{Cancel: func() { count++ }})
	r.Register("b", &ActiveStream{Cancel: func() { count++ }})

	r.CancelAll()

	if count != 2 {
		t.Errorf("cancelled = %d, want 2", count)
	}
	if _, ok := r.Get("a"); ok {
		t.Error("stream a still registered")
	}
}
