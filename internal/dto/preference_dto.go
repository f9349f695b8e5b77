package dto

import "time"

type PreferenceResponse struct {
	PinnedModels      []string  `json:"pinned_models"`
	LastSelectedModel string    `json:"last_selected_model"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type UpdateSelectedModelRequest struct {
	Model string `json:"model" validate:"required"`
}

type ToggleModelPinRequest struct {
	Model string `json:"model" validate:"required"`
}

type ModelResponse struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Provider    string    `json:"provider"`
	ReleasedAt  time.Time `json:"released_at"`
	Reasoning   bool      `json:"reasoning"`
	InputImages bool      `json:"input_images"`
	Pinned      bool      `json:"pinned"`
}
