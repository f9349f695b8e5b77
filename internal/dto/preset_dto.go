package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePresetRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	SystemPrompt string `json:"system_prompt" validate:"required"`
	DefaultModel string `json:"default_model"`
}

type UpdatePresetRequest struct {
	Id           uuid.UUID
	Name         string `json:"name" validate:"required,min=1,max=100"`
	SystemPrompt string `json:"system_prompt" validate:"required"`
	DefaultModel string `json:"default_model"`
}

type PresetResponse struct {
	Id           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	SystemPrompt string     `json:"system_prompt"`
	DefaultModel string     `json:"default_model,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
