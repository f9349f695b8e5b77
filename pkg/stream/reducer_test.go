package stream

import (
	"errors"
	"testing"

	"ai-chathub-be/internal/constant"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/pkg/aggregator"

	"github.com/google/uuid"
)

func newTestState() (State, uuid.UUID) {
	userMsg := &entity.Message{Id: uuid.New(), Role: constant.MessageRoleUser, Content: "hello"}
	placeholder := &entity.Message{Id: uuid.New(), Role: constant.MessageRoleAssistant, IsStreaming: true}
	s := NewState("thread-1", "Test thread", nil).WithSend(userMsg, placeholder)
	return s, placeholder.Id
}

func placeholderOf(t *testing.T, s State, id uuid.UUID) *entity.Message {
	t.Helper()
	for _, m := range s.Messages {
		if m.Id == id {
			return m
		}
	}
	t.Fatalf("message %s not found in state", id)
	return nil
}

func TestReasoningThenContent(t *testing.T) {
	s, pid := newTestState()

	events := []aggregator.StreamEvent{
		{Type: aggregator.EventReasoning, Reasoning: "a"},
		{Type: aggregator.EventReasoning, Reasoning: "ab"},
		{Type: aggregator.EventContent, Content: "x"},
		{Type: aggregator.EventContent, Content: "xy"},
	}

	// After the reasoning chunks the stream is in the reasoning phase.
	s = Apply(s, events[0])
	s = Apply(s, events[1])
	if s.Phase != PhaseReasoning {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseReasoning)
	}
	if !s.ReasoningActive {
		t.Error("ReasoningActive = false, want true")
	}
	if got := placeholderOf(t, s, pid).Reasoning; got != "ab" {
		t.Errorf("Reasoning = %q, want %q (replace, not append)", got, "ab")
	}

	// First content chunk ends reasoning without an explicit end event.
	s = Apply(s, events[2])
	if s.Phase != PhaseContent {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseContent)
	}
	if s.ReasoningActive {
		t.Error("ReasoningActive = true after first content, want false")
	}

	s = Apply(s, events[3])
	msg := placeholderOf(t, s, pid)
	if msg.Content != "xy" {
		t.Errorf("Content = %q, want %q (replace, not append)", msg.Content, "xy")
	}
	if msg.Reasoning != "ab" {
		t.Errorf("Reasoning = %q, want %q (preserved)", msg.Reasoning, "ab")
	}
}

func TestLateReasoningAfterContent(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "answer"})
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventReasoning, Reasoning: "afterthought"})

	if s.Phase != PhaseContent {
		t.Errorf("Phase = %v, want %v (no re-entry into reasoning)", s.Phase, PhaseContent)
	}
	if s.ReasoningActive {
		t.Error("ReasoningActive = true, want false")
	}
	if got := placeholderOf(t, s, pid).Reasoning; got != "afterthought" {
		t.Errorf("Reasoning = %q, want %q (text still updates)", got, "afterthought")
	}
}

func TestIdempotentCompletion(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "partial"})

	finalID := uuid.New()
	completed := aggregator.StreamEvent{
		Type: aggregator.EventCompleted,
		Message: &aggregator.FinalMessage{
			ID:      finalID.String(),
			Content: "final answer",
			Usage:   &aggregator.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}

	s = Apply(s, completed)
	wantLen := len(s.Messages)
	if s.Phase != PhaseDone {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseDone)
	}

	// Replaying the same completion must not duplicate the message.
	s = Apply(s, completed)
	if len(s.Messages) != wantLen {
		t.Errorf("len(Messages) = %d after replay, want %d", len(s.Messages), wantLen)
	}
	if containsMessage(s.Messages, pid) {
		t.Error("placeholder id still present, want it replaced by final id")
	}
	msg := placeholderOf(t, s, finalID)
	if msg.Content != "final answer" {
		t.Errorf("Content = %q, want %q", msg.Content, "final answer")
	}
	if msg.IsStreaming {
		t.Error("IsStreaming = true on completed message, want false")
	}
	if msg.Metrics == nil || msg.Metrics.CompletedAt == nil {
		t.Fatal("Metrics.CompletedAt not set on completion")
	}
}

func TestEventsAfterDoneIgnored(t *testing.T) {
	s, _ := newTestState()
	s = Apply(s, aggregator.StreamEvent{
		Type:    aggregator.EventCompleted,
		Message: &aggregator.FinalMessage{ID: uuid.New().String(), Content: "done"},
	})

	after := Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "stray"})
	if got := after.Messages[len(after.Messages)-1].Content; got != "done" {
		t.Errorf("Content = %q after post-done content event, want %q", got, "done")
	}
	after = Apply(s, aggregator.StreamEvent{Type: aggregator.EventError, Err: errors.New("late")})
	if after.Phase != PhaseDone {
		t.Errorf("Phase = %v after post-done error, want %v", after.Phase, PhaseDone)
	}
}

func TestErrorKeepsPartialContent(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "partial"})
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventError, Err: errors.New("upstream closed")})

	if s.Phase != PhaseError {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseError)
	}
	if s.Err == nil {
		t.Error("Err = nil, want the stream error")
	}
	msg := placeholderOf(t, s, pid)
	if msg.Content != "partial" {
		t.Errorf("Content = %q, want %q (partial kept)", msg.Content, "partial")
	}
	if msg.IsStreaming {
		t.Error("IsStreaming = true after error, want false")
	}
}

func TestCancelKeepsPartialContent(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "half an ans"})
	s = s.WithCancelled()

	if s.Phase != PhaseDone {
		t.Errorf("Phase = %v, want %v", s.Phase, PhaseDone)
	}
	msg := placeholderOf(t, s, pid)
	if msg.Content != "half an ans" {
		t.Errorf("Content = %q, want partial content kept", msg.Content)
	}
	if msg.IsStreaming {
		t.Error("IsStreaming = true after cancel, want false")
	}
}

func TestThreadCreatedSwapsTempID(t *testing.T) {
	tests := []struct {
		name      string
		startID   string
		realID    string
		wantID    string
		wantTitle string
	}{
		{
			name:      "temp id swapped",
			startID:   constant.TempThreadPrefix + uuid.NewString(),
			realID:    "7f3b1c9e-0000-0000-0000-000000000001",
			wantID:    "7f3b1c9e-0000-0000-0000-000000000001",
			wantTitle: "Server title",
		},
		{
			name:      "real id never overwritten",
			startID:   "7f3b1c9e-0000-0000-0000-000000000002",
			realID:    "7f3b1c9e-0000-0000-0000-000000000003",
			wantID:    "7f3b1c9e-0000-0000-0000-000000000002",
			wantTitle: "Server title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(tt.startID, "", nil)
			s = Apply(s, aggregator.StreamEvent{
				Type:        aggregator.EventThreadCreated,
				ThreadID:    tt.realID,
				ThreadTitle: "Server title",
			})
			if s.ThreadID != tt.wantID {
				t.Errorf("ThreadID = %q, want %q", s.ThreadID, tt.wantID)
			}
			if s.ThreadTitle != tt.wantTitle {
				t.Errorf("ThreadTitle = %q, want %q", s.ThreadTitle, tt.wantTitle)
			}
		})
	}
}

func TestAnnotationsBatchReplaces(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventAnnotations, Annotations: []entity.Annotation{
		{Type: "url_citation", Title: "First", URL: "https://a.example"},
	}})
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventAnnotations, Annotations: []entity.Annotation{
		{Type: "url_citation", Title: "First", URL: "https://a.example"},
		{Type: "url_citation", Title: "Second", URL: "https://b.example"},
	}})

	got := placeholderOf(t, s, pid).Annotations
	if len(got) != 2 {
		t.Fatalf("len(Annotations) = %d, want 2 (batch replaces, not appends)", len(got))
	}
	if got[1].Title != "Second" {
		t.Errorf("Annotations[1].Title = %q, want %q", got[1].Title, "Second")
	}
}

func TestUsageCountsMonotone(t *testing.T) {
	s, pid := newTestState()
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventUsage, Usage: &aggregator.TokenUsage{
		InputTokens: 100, OutputTokens: 50, TotalTokens: 150,
	}})
	// A lower snapshot must not shrink the counts.
	s = Apply(s, aggregator.StreamEvent{Type: aggregator.EventUsage, Usage: &aggregator.TokenUsage{
		InputTokens: 100, OutputTokens: 40, TotalTokens: 140,
	}})

	m := placeholderOf(t, s, pid).Metrics
	if m == nil {
		t.Fatal("Metrics = nil, want merged usage")
	}
	if m.OutputTokens != 50 {
		t.Errorf("OutputTokens = %d, want 50", m.OutputTokens)
	}
	if m.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", m.TotalTokens)
	}
}

func TestApplyDoesNotMutatePriorSnapshot(t *testing.T) {
	s, pid := newTestState()
	s1 := Apply(s, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "first"})
	s2 := Apply(s1, aggregator.StreamEvent{Type: aggregator.EventContent, Content: "second"})

	if got := placeholderOf(t, s1, pid).Content; got != "first" {
		t.Errorf("older snapshot Content = %q after later Apply, want %q", got, "first")
	}
	if got := placeholderOf(t, s2, pid).Content; got != "second" {
		t.Errorf("Content = %q, want %q", got, "second")
	}
}
