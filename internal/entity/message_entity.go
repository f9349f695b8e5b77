package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id          uuid.UUID
	ThreadId    uuid.UUID
	Role        string
	Content     string
	Reasoning   string
	Attachments []Attachment
	Metrics     *TokenMetrics
	Annotations []Annotation
	IsStreaming bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TokenMetrics is attached to a message once usage data arrives. Counts only
// grow across snapshots of a single stream.
type TokenMetrics struct {
	InputTokens     int        `json:"input_tokens"`
	OutputTokens    int        `json:"output_tokens"`
	TotalTokens     int        `json:"total_tokens"`
	TokensPerSecond float64    `json:"tokens_per_second"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationMs      int64      `json:"duration_ms"`
	InputCostUSD    float64    `json:"input_cost_usd"`
	OutputCostUSD   float64    `json:"output_cost_usd"`
	TotalCostUSD    float64    `json:"total_cost_usd"`
}

// Annotation is one web-search citation the model attached to its answer.
type Annotation struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}
