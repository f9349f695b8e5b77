package entity

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
