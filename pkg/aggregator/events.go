package aggregator

import "ai-chathub-be/internal/entity"

// EventType tags one increment of a streamed model response.
type EventType string

const (
	// EventContent carries the full content accumulated so far (replace, not
	// append).
	EventContent EventType = "content"
	// EventReasoning carries the full reasoning trace so far (replace, not
	// append).
	EventReasoning EventType = "reasoning"
	// EventUsage is a token-metric snapshot; counts only grow.
	EventUsage EventType = "usage"
	// EventAnnotations is a batch of web-search citations.
	EventAnnotations EventType = "annotations"
	// EventThreadCreated supplies the server-issued thread id for a new-chat
	// send.
	EventThreadCreated EventType = "thread_created"
	// EventCompleted carries the finalized assistant message.
	EventCompleted EventType = "completed"
	// EventError terminates the stream; partial content stays applied.
	EventError EventType = "error"
)

type TokenUsage struct {
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	TotalTokens     int     `json:"total_tokens"`
	TokensPerSecond float64 `json:"tokens_per_second"`
	InputCostUSD    float64 `json:"input_cost_usd"`
	OutputCostUSD   float64 `json:"output_cost_usd"`
	TotalCostUSD    float64 `json:"total_cost_usd"`
}

// FinalMessage is the completion payload: the assistant message as the
// aggregator persisted it, replacing the streaming placeholder wholesale.
type FinalMessage struct {
	ID          string              `json:"id"`
	Content     string              `json:"content"`
	Reasoning   string              `json:"reasoning,omitempty"`
	Annotations []entity.Annotation `json:"annotations,omitempty"`
	Usage       *TokenUsage         `json:"usage,omitempty"`
}

// StreamEvent is the tagged union delivered on the stream channel. Exactly
// the fields for the tagged Type are set.
type StreamEvent struct {
	Type        EventType
	Content     string
	Reasoning   string
	Usage       *TokenUsage
	Annotations []entity.Annotation
	ThreadID    string
	ThreadTitle string
	Message     *FinalMessage
	Err         error
}
