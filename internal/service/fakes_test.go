package service

import (
	"context"
	"sync"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/repository/contract"
	"ai-chathub-be/internal/repository/specification"
	"ai-chathub-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Function-field fakes for the repository layer. Only the methods a test
// installs are expected to run; the rest return zero values.

type fakeThreadRepo struct {
	createFn       func(ctx context.Context, thread *entity.Thread) error
	updateFieldsFn func(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*entity.Thread, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	findOneFn      func(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error)
	findAllFn      func(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error)
}

func (f *fakeThreadRepo) Create(ctx context.Context, thread *entity.Thread) error {
	if f.createFn != nil {
		return f.createFn(ctx, thread)
	}
	return nil
}

func (f *fakeThreadRepo) Update(context.Context, *entity.Thread) error { return nil }

func (f *fakeThreadRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*entity.Thread, error) {
	if f.updateFieldsFn != nil {
		return f.updateFieldsFn(ctx, id, fields)
	}
	return nil, nil
}

func (f *fakeThreadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeThreadRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, specs...)
	}
	return nil, nil
}

func (f *fakeThreadRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, specs...)
	}
	return nil, nil
}

func (f *fakeThreadRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeMessageRepo struct {
	createBulkFn       func(ctx context.Context, messages []*entity.Message) error
	deleteByThreadIdFn func(ctx context.Context, threadId uuid.UUID) error
	findAllFn          func(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
}

func (f *fakeMessageRepo) Create(context.Context, *entity.Message) error { return nil }

func (f *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.Message) error {
	if f.createBulkFn != nil {
		return f.createBulkFn(ctx, messages)
	}
	return nil
}

func (f *fakeMessageRepo) Update(context.Context, *entity.Message) error { return nil }
func (f *fakeMessageRepo) Delete(context.Context, uuid.UUID) error       { return nil }

func (f *fakeMessageRepo) DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error {
	if f.deleteByThreadIdFn != nil {
		return f.deleteByThreadIdFn(ctx, threadId)
	}
	return nil
}

func (f *fakeMessageRepo) FindOne(context.Context, ...specification.Specification) (*entity.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, specs...)
	}
	return nil, nil
}

func (f *fakeMessageRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakePreferenceRepo struct {
	mu       sync.Mutex
	findFn   func(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error)
	upsertFn func(ctx context.Context, pref *entity.UserPreference) (*entity.UserPreference, error)
	upserts  []*entity.UserPreference
}

func (f *fakePreferenceRepo) Find(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error) {
	if f.findFn != nil {
		return f.findFn(ctx, userId)
	}
	return nil, nil
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, pref *entity.UserPreference) (*entity.UserPreference, error) {
	f.mu.Lock()
	f.upserts = append(f.upserts, pref)
	f.mu.Unlock()
	if f.upsertFn != nil {
		return f.upsertFn(ctx, pref)
	}
	return pref, nil
}

func (f *fakePreferenceRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

type fakeUnitOfWork struct {
	threads     *fakeThreadRepo
	messages    *fakeMessageRepo
	preferences *fakePreferenceRepo

	began      bool
	committed  bool
	rolledBack bool
}

func (f *fakeUnitOfWork) Begin(context.Context) error { f.began = true; return nil }
func (f *fakeUnitOfWork) Commit() error               { f.committed = true; return nil }
func (f *fakeUnitOfWork) Rollback() error             { f.rolledBack = true; return nil }

func (f *fakeUnitOfWork) ThreadRepository() contract.ThreadRepository {
	return f.threads
}

func (f *fakeUnitOfWork) MessageRepository() contract.MessageRepository {
	return f.messages
}

func (f *fakeUnitOfWork) PreferenceRepository() contract.PreferenceRepository {
	return f.preferences
}

func (f *fakeUnitOfWork) TagRepository() contract.TagRepository       { return nil }
func (f *fakeUnitOfWork) PresetRepository() contract.PresetRepository { return nil }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newFakeFactory() (*fakeFactory, *fakeUnitOfWork) {
	uow := &fakeUnitOfWork{
		threads:     &fakeThreadRepo{},
		messages:    &fakeMessageRepo{},
		preferences: &fakePreferenceRepo{},
	}
	return &fakeFactory{uow: uow}, uow
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }
