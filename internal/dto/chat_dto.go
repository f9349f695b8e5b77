package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-chathub-be/internal/entity"
)

type ReasoningRequest struct {
	Enabled bool   `json:"enabled"`
	Effort  string `json:"effort" validate:"omitempty,oneof=low medium high"`
}

type WebSearchRequest struct {
	Enabled bool   `json:"enabled"`
	Effort  string `json:"effort" validate:"omitempty,oneof=low medium high"`
}

type SendMessageRequest struct {
	// ThreadId is empty or temp-prefixed for a new-chat send; the stream's
	// thread-created event later supplies the permanent id.
	ThreadId      string            `json:"thread_id"`
	Content       string            `json:"content" validate:"required"`
	Model         string            `json:"model"`
	PresetId      *uuid.UUID        `json:"preset_id"`
	AttachmentIds []uuid.UUID       `json:"attachment_ids"`
	Reasoning     *ReasoningRequest `json:"reasoning"`
	WebSearch     *WebSearchRequest `json:"web_search"`
}

type SendMessageResponse struct {
	ThreadId      string    `json:"thread_id"`
	UserMessageId uuid.UUID `json:"user_message_id"`
	// PlaceholderId identifies the assistant message the streamed events
	// will fold into until completion replaces it.
	PlaceholderId uuid.UUID `json:"placeholder_id"`
}

type CancelStreamResponse struct {
	ThreadId  string `json:"thread_id"`
	Cancelled bool   `json:"cancelled"`
}

type TokenMetricsResponse struct {
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	TotalTokens     int     `json:"total_tokens"`
	TokensPerSecond float64 `json:"tokens_per_second"`
	DurationMs      int64   `json:"duration_ms"`
	TotalCostUSD    float64 `json:"total_cost_usd"`
}

// StreamEventMessage is the fanout payload published on the in-process bus
// and delivered to the user's websocket connections. Message carries the
// full evolving snapshot, so each frame replaces the previous one.
type StreamEventMessage struct {
	UserId      string           `json:"user_id"`
	ThreadId    string           `json:"thread_id"`
	Type        string           `json:"type"`
	ThreadTitle string           `json:"thread_title,omitempty"`
	Message     *MessageResponse `json:"message,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type MessageResponse struct {
	Id          uuid.UUID             `json:"id"`
	ThreadId    string                `json:"thread_id"`
	Role        string                `json:"role"`
	Content     string                `json:"content"`
	Reasoning   string                `json:"reasoning,omitempty"`
	Attachments []entity.Attachment   `json:"attachments,omitempty"`
	Metrics     *TokenMetricsResponse `json:"metrics,omitempty"`
	Annotations []entity.Annotation   `json:"annotations,omitempty"`
	IsStreaming bool                  `json:"is_streaming"`
	CreatedAt   time.Time             `json:"created_at"`
}
