package unitofwork

import (
	"context"

	"ai-chathub-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ThreadRepository() contract.ThreadRepository
	MessageRepository() contract.MessageRepository
	PreferenceRepository() contract.PreferenceRepository
	TagRepository() contract.TagRepository
	PresetRepository() contract.PresetRepository
}
