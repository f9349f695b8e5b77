package implementation

import (
	"context"
	"errors"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/mapper"
	"ai-chathub-be/internal/model"
	"ai-chathub-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PreferenceMapper
}

func NewPreferenceRepository(db *gorm.DB) contract.PreferenceRepository {
	return &PreferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewPreferenceMapper(),
	}
}

func (r *PreferenceRepositoryImpl) Find(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error) {
	var m model.UserPreference
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PreferenceToEntity(&m), nil
}

func (r *PreferenceRepositoryImpl) Upsert(ctx context.Context, pref *entity.UserPreference) (*entity.UserPreference, error) {
	m := r.mapper.PreferenceToModel(pref)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pinned_models", "last_selected_model", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	var stored model.UserPreference
	if err := r.db.WithContext(ctx).First(&stored, "user_id = ?", pref.UserId).Error; err != nil {
		return nil, err
	}
	return r.mapper.PreferenceToEntity(&stored), nil
}
