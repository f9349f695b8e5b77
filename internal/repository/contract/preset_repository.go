package contract

import (
	"context"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PresetRepository interface {
	Create(ctx context.Context, preset *entity.Preset) error
	Update(ctx context.Context, preset *entity.Preset) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Preset, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Preset, error)
}
