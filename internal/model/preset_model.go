package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Preset struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name         string         `gorm:"type:varchar(120);not null"`
	SystemPrompt string         `gorm:"type:text;not null"`
	DefaultModel string         `gorm:"type:varchar(120)"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Preset) TableName() string {
	return "presets"
}
