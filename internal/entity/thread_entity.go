package entity

import (
	"time"

	"github.com/google/uuid"
)

type Thread struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Title         string
	Pinned        bool
	CurrentModel  string
	LastUsedModel string
	TagIds        []uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool

	// Messages is populated only when the thread is fetched with history.
	Messages []*Message
}
