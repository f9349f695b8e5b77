package implementation

import (
	"context"
	"errors"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/mapper"
	"ai-chathub-be/internal/model"
	"ai-chathub-be/internal/repository/contract"
	"ai-chathub-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PresetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PreferenceMapper
}

func NewPresetRepository(db *gorm.DB) contract.PresetRepository {
	return &PresetRepositoryImpl{
		db:     db,
		mapper: mapper.NewPreferenceMapper(),
	}
}

func (r *PresetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PresetRepositoryImpl) Create(ctx context.Context, preset *entity.Preset) error {
	m := r.mapper.PresetToModel(preset)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*preset = *r.mapper.PresetToEntity(m)
	return nil
}

func (r *PresetRepositoryImpl) Update(ctx context.Context, preset *entity.Preset) error {
	m := r.mapper.PresetToModel(preset)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*preset = *r.mapper.PresetToEntity(m)
	return nil
}

func (r *PresetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Preset{}, id).Error
}

func (r *PresetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Preset, error) {
	var m model.Preset
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PresetToEntity(&m), nil
}

func (r *PresetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Preset, error) {
	var models []*model.Preset
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Preset, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PresetToEntity(m)
	}
	return entities, nil
}
