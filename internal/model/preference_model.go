package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserPreference struct {
	UserId            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PinnedModels      datatypes.JSON `gorm:"type:jsonb"`
	LastSelectedModel string         `gorm:"type:varchar(120)"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
