package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Thread struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Title         string         `gorm:"type:text;not null"`
	Pinned        bool           `gorm:"not null;default:false"`
	CurrentModel  string         `gorm:"type:varchar(120)"`
	LastUsedModel string         `gorm:"type:varchar(120)"`
	TagIds        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime;index"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Thread) TableName() string {
	return "threads"
}
