package entity

import (
	"time"

	"github.com/google/uuid"
)

// Preset is a user-defined "app": a named system prompt with an optional
// default model applied when starting a chat from it.
type Preset struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Name         string
	SystemPrompt string
	DefaultModel string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
