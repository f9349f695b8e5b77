package mapper

import (
	"encoding/json"
	"time"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PreferenceMapper struct{}

func NewPreferenceMapper() *PreferenceMapper {
	return &PreferenceMapper{}
}

func (m *PreferenceMapper) PreferenceToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}

	var pinned []string
	if len(p.PinnedModels) > 0 {
		_ = json.Unmarshal(p.PinnedModels, &pinned)
	}

	return &entity.UserPreference{
		UserId:            p.UserId,
		PinnedModels:      pinned,
		LastSelectedModel: p.LastSelectedModel,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *PreferenceMapper) PreferenceToModel(p *entity.UserPreference) *model.UserPreference {
	if p == nil {
		return nil
	}

	var pinned datatypes.JSON
	if len(p.PinnedModels) > 0 {
		raw, _ := json.Marshal(p.PinnedModels)
		pinned = raw
	}

	return &model.UserPreference{
		UserId:            p.UserId,
		PinnedModels:      pinned,
		LastSelectedModel: p.LastSelectedModel,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *PreferenceMapper) TagToEntity(t *model.Tag) *entity.Tag {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.Tag{
		Id:        t.Id,
		UserId:    t.UserId,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *PreferenceMapper) TagToModel(t *entity.Tag) *model.Tag {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Tag{
		Id:        t.Id,
		UserId:    t.UserId,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *PreferenceMapper) PresetToEntity(p *model.Preset) *entity.Preset {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		d := p.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		u := p.UpdatedAt
		updatedAt = &u
	}

	return &entity.Preset{
		Id:           p.Id,
		UserId:       p.UserId,
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
		DefaultModel: p.DefaultModel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    p.DeletedAt.Valid,
	}
}

func (m *PreferenceMapper) PresetToModel(p *entity.Preset) *model.Preset {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Preset{
		Id:           p.Id,
		UserId:       p.UserId,
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
		DefaultModel: p.DefaultModel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}
