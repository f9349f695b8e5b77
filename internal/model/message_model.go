package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role        string         `gorm:"type:varchar(50);not null"`
	Content     string         `gorm:"type:text;not null"`
	Reasoning   string         `gorm:"type:text"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
	Metrics     datatypes.JSON `gorm:"type:jsonb"`
	Annotations datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
