package stream

import (
	"time"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/session"
	"ai-chathub-be/pkg/aggregator"

	"github.com/google/uuid"
)

// Phase tracks where a single in-flight send is in its lifecycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending" // sent, awaiting first reasoning or content
	PhaseReasoning Phase = "reasoning"
	PhaseContent   Phase = "content"
	PhaseDone      Phase = "done"
	PhaseError     Phase = "error"
)

// State is the evolving view of one thread during a streamed response. It is
// a value: Apply returns a new State and never mutates shared message
// records, so callers holding an older snapshot stay consistent.
type State struct {
	ThreadID        string
	ThreadTitle     string
	Messages        []*entity.Message
	PlaceholderID   uuid.UUID
	ReasoningActive bool
	Phase           Phase
	Err             error
}

// NewState starts a reducer for a thread. threadID may be a temp id for a
// new-chat send; the thread-created event later swaps it.
func NewState(threadID, title string, history []*entity.Message) State {
	msgs := make([]*entity.Message, len(history))
	copy(msgs, history)
	return State{
		ThreadID:    threadID,
		ThreadTitle: title,
		Messages:    msgs,
		Phase:       PhaseIdle,
	}
}

// WithSend appends the outgoing user message and the assistant placeholder
// the chunks will fold into.
func (s State) WithSend(userMsg, placeholder *entity.Message) State {
	next := s
	next.Messages = append(append([]*entity.Message{}, s.Messages...), userMsg, placeholder)
	next.PlaceholderID = placeholder.Id
	next.Phase = PhasePending
	next.ReasoningActive = false
	next.Err = nil
	return next
}

// WithCancelled marks the in-progress message as no longer streaming while
// keeping whatever partial content already applied.
func (s State) WithCancelled() State {
	next := s
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		m.IsStreaming = false
		return m
	})
	next.ReasoningActive = false
	next.Phase = PhaseDone
	return next
}

// Apply folds one stream event into the state. Events must be applied in
// arrival order; the transport (a single HTTP streaming body) preserves it.
func Apply(s State, ev aggregator.StreamEvent) State {
	if s.Phase == PhaseDone || s.Phase == PhaseError {
		// Replays after completion only tolerate a duplicate completion.
		if ev.Type != aggregator.EventCompleted {
			return s
		}
	}

	switch ev.Type {
	case aggregator.EventReasoning:
		return s.applyReasoning(ev.Reasoning)
	case aggregator.EventContent:
		return s.applyContent(ev.Content)
	case aggregator.EventUsage:
		return s.applyUsage(ev.Usage)
	case aggregator.EventAnnotations:
		return s.applyAnnotations(ev.Annotations)
	case aggregator.EventThreadCreated:
		return s.applyThreadCreated(ev.ThreadID, ev.ThreadTitle)
	case aggregator.EventCompleted:
		return s.applyCompleted(ev.Message)
	case aggregator.EventError:
		return s.applyError(ev.Err)
	default:
		return s
	}
}

func (s State) applyReasoning(full string) State {
	next := s
	// The event carries the complete reasoning-so-far, so this is a replace.
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		m.Reasoning = full
		return m
	})
	if s.Phase == PhaseContent {
		// Late reasoning after content started: text still updates, but the
		// stream does not re-enter the reasoning phase.
		return next
	}
	next.Phase = PhaseReasoning
	next.ReasoningActive = true
	return next
}

func (s State) applyContent(full string) State {
	next := s
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		m.Content = full
		return m
	})
	// The first content chunk ends reasoning even without an explicit
	// end-of-reasoning event.
	next.Phase = PhaseContent
	next.ReasoningActive = false
	return next
}

func (s State) applyUsage(usage *aggregator.TokenUsage) State {
	if usage == nil {
		return s
	}
	next := s
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		m.Metrics = mergeUsage(m.Metrics, usage, false)
		return m
	})
	return next
}

func (s State) applyAnnotations(batch []entity.Annotation) State {
	next := s
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		// Each batch is the complete annotation set so far.
		m.Annotations = batch
		return m
	})
	return next
}

func (s State) applyThreadCreated(realID, title string) State {
	next := s
	if session.IsTempThreadID(s.ThreadID) && realID != "" {
		next.ThreadID = realID
	}
	if title != "" {
		next.ThreadTitle = title
	}
	return next
}

func (s State) applyCompleted(final *aggregator.FinalMessage) State {
	if final == nil {
		return s
	}

	finalID := s.PlaceholderID
	if parsed, err := uuid.Parse(final.ID); err == nil {
		finalID = parsed
	}

	build := func(m entity.Message) entity.Message {
		m.Id = finalID
		m.Content = final.Content
		m.Reasoning = final.Reasoning
		if len(final.Annotations) > 0 {
			m.Annotations = final.Annotations
		}
		m.Metrics = mergeUsage(m.Metrics, final.Usage, true)
		m.IsStreaming = false
		return m
	}

	next := s
	// Lookup-by-identifier-then-replace, never append: replaying the same
	// completion finds the already-finalized record under finalID and
	// rewrites it in place, so no duplicate appears.
	if containsMessage(s.Messages, s.PlaceholderID) {
		next.Messages = replaceMessage(s.Messages, s.PlaceholderID, build)
	} else if containsMessage(s.Messages, finalID) {
		next.Messages = replaceMessage(s.Messages, finalID, build)
	}
	next.PlaceholderID = finalID
	next.ReasoningActive = false
	next.Phase = PhaseDone
	next.Err = nil
	return next
}

func (s State) applyError(err error) State {
	next := s
	// The partial message stays visible, just no longer streaming. No
	// automatic retry.
	next.Messages = replaceMessage(s.Messages, s.PlaceholderID, func(m entity.Message) entity.Message {
		m.IsStreaming = false
		return m
	})
	next.ReasoningActive = false
	next.Phase = PhaseError
	next.Err = err
	return next
}

// mergeUsage folds a usage snapshot into the message metrics, keeping counts
// monotone and preserving the stream start time.
func mergeUsage(prev *entity.TokenMetrics, usage *aggregator.TokenUsage, completed bool) *entity.TokenMetrics {
	m := entity.TokenMetrics{StartedAt: time.Now()}
	if prev != nil {
		m = *prev
	}
	if usage != nil {
		if usage.InputTokens > m.InputTokens {
			m.InputTokens = usage.InputTokens
		}
		if usage.OutputTokens > m.OutputTokens {
			m.OutputTokens = usage.OutputTokens
		}
		if usage.TotalTokens > m.TotalTokens {
			m.TotalTokens = usage.TotalTokens
		}
		if m.InputTokens+m.OutputTokens > m.TotalTokens {
			m.TotalTokens = m.InputTokens + m.OutputTokens
		}
		if usage.TokensPerSecond > 0 {
			m.TokensPerSecond = usage.TokensPerSecond
		}
		if usage.InputCostUSD > 0 {
			m.InputCostUSD = usage.InputCostUSD
		}
		if usage.OutputCostUSD > 0 {
			m.OutputCostUSD = usage.OutputCostUSD
		}
		if usage.TotalCostUSD > 0 {
			m.TotalCostUSD = usage.TotalCostUSD
		}
	}
	if completed {
		now := time.Now()
		m.CompletedAt = &now
		m.DurationMs = now.Sub(m.StartedAt).Milliseconds()
		if m.TokensPerSecond == 0 && m.DurationMs > 0 {
			m.TokensPerSecond = float64(m.OutputTokens) / (float64(m.DurationMs) / 1000.0)
		}
	}
	return &m
}

func containsMessage(msgs []*entity.Message, id uuid.UUID) bool {
	for _, m := range msgs {
		if m.Id == id {
			return true
		}
	}
	return false
}

// replaceMessage returns a new slice where the message with id is replaced by
// mutate's result; untouched entries are shared.
func replaceMessage(msgs []*entity.Message, id uuid.UUID, mutate func(entity.Message) entity.Message) []*entity.Message {
	out := make([]*entity.Message, len(msgs))
	for i, m := range msgs {
		if m.Id == id {
			updated := mutate(*m)
			out[i] = &updated
		} else {
			out[i] = m
		}
	}
	return out
}
