package contract

import (
	"context"

	"ai-chathub-be/internal/entity"

	"github.com/google/uuid"
)

type PreferenceRepository interface {
	// Find returns nil (not an error) when the user has no stored preference.
	Find(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error)
	// Upsert writes the preference and returns the canonical stored record.
	Upsert(ctx context.Context, pref *entity.UserPreference) (*entity.UserPreference, error)
}
