package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByThreadID filters messages by owning thread
type ByThreadID struct {
	ThreadID uuid.UUID
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

// PinnedOnly restricts to pinned threads
type PinnedOnly struct{}

func (s PinnedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pinned = ?", true)
}

// ByRole filters messages by role
type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}
