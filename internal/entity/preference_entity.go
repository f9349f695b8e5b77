package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserPreference holds per-user model selection state. The remote record is
// authoritative once loaded; a local cache tier answers reads before that.
type UserPreference struct {
	UserId            uuid.UUID
	PinnedModels      []string
	LastSelectedModel string
	UpdatedAt         time.Time
}

// ModelInfo describes one selectable model from the aggregator catalog.
type ModelInfo struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Provider    string    `json:"provider"`
	ReleasedAt  time.Time `json:"released_at"`
	Reasoning   bool      `json:"reasoning"`
	InputImages bool      `json:"input_images"`
	Pinned      bool      `json:"pinned"`
}
