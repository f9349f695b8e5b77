package service

import (
	"context"
	"sort"
	"time"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/pkg/apperr"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/internal/repository/unitofwork"
	"ai-chathub-be/pkg/aggregator"
	"ai-chathub-be/pkg/optimistic"

	"github.com/google/uuid"
)

type IPreferenceService interface {
	Get(ctx context.Context, userId uuid.UUID) (*dto.PreferenceResponse, error)
	// LastSelectedModel never fails: it falls through cache and store down to
	// the configured default.
	LastSelectedModel(ctx context.Context, userId uuid.UUID) string
	UpdateLastSelectedModel(ctx context.Context, userId uuid.UUID, req *dto.UpdateSelectedModelRequest) (*dto.PreferenceResponse, error)
	ToggleModelPin(ctx context.Context, userId uuid.UUID, req *dto.ToggleModelPinRequest) (*dto.PreferenceResponse, error)
	ListModels(ctx context.Context, userId uuid.UUID) ([]*dto.ModelResponse, error)
}

type preferenceService struct {
	uowFactory   unitofwork.RepositoryFactory
	localCache   *memory.PreferenceCacheRepository
	aggregator   *aggregator.Client
	defaultModel string
	logger       logger.ILogger
}

func NewPreferenceService(
	uowFactory unitofwork.RepositoryFactory,
	localCache *memory.PreferenceCacheRepository,
	aggregatorClient *aggregator.Client,
	defaultModel string,
	log logger.ILogger,
) IPreferenceService {
	return &preferenceService{
		uowFactory:   uowFactory,
		localCache:   localCache,
		aggregator:   aggregatorClient,
		defaultModel: defaultModel,
		logger:       log,
	}
}

// load resolves the user's preference record: local cache tier first, then
// the store (seeding the cache), then an empty record.
func (s *preferenceService) load(ctx context.Context, userId uuid.UUID) *entity.UserPreference {
	if pref, ok := s.localCache.Get(userId.String()); ok {
		return pref
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	pref, err := uow.PreferenceRepository().Find(ctx, userId)
	if err != nil {
		s.logger.Warn("PreferenceService", "Failed to load preferences, serving defaults", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
	if pref == nil {
		pref = &entity.UserPreference{UserId: userId}
	}
	s.localCache.Set(userId.String(), pref)
	return pref
}

func (s *preferenceService) Get(ctx context.Context, userId uuid.UUID) (*dto.PreferenceResponse, error) {
	pref := s.load(ctx, userId)
	return toPreferenceResponse(pref), nil
}

func (s *preferenceService) LastSelectedModel(ctx context.Context, userId uuid.UUID) string {
	pref := s.load(ctx, userId)
	if pref.LastSelectedModel != "" {
		return pref.LastSelectedModel
	}
	return s.defaultModel
}

func (s *preferenceService) UpdateLastSelectedModel(ctx context.Context, userId uuid.UUID, req *dto.UpdateSelectedModelRequest) (*dto.PreferenceResponse, error) {
	pref := s.load(ctx, userId)

	updated := *pref
	updated.LastSelectedModel = req.Model
	updated.UpdatedAt = time.Now()

	// The local write is synchronous so an immediate re-read sees the new
	// selection. The store write runs async and its failure does not roll
	// the selection back; the next successful write resyncs.
	s.localCache.Set(userId.String(), &updated)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if _, err := uow.PreferenceRepository().Upsert(ctx, &updated); err != nil {
			s.logger.Warn("PreferenceService", "Remote preference sync failed, local selection kept", map[string]interface{}{
				"user_id": userId,
				"model":   req.Model,
				"error":   err.Error(),
			})
		}
	}()

	return toPreferenceResponse(&updated), nil
}

func (s *preferenceService) ToggleModelPin(ctx context.Context, userId uuid.UUID, req *dto.ToggleModelPinRequest) (*dto.PreferenceResponse, error) {
	pref := s.load(ctx, userId)

	var result *entity.UserPreference
	err := optimistic.Mutate(ctx, *pref,
		func(p entity.UserPreference) entity.UserPreference {
			p.PinnedModels = togglePinned(p.PinnedModels, req.Model)
			p.UpdatedAt = time.Now()
			return p
		},
		func(ctx context.Context, p entity.UserPreference) (*entity.UserPreference, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			return uow.PreferenceRepository().Upsert(ctx, &p)
		},
		func(p entity.UserPreference) {
			s.localCache.Set(userId.String(), &p)
			result = &p
		},
	)
	if err != nil {
		return nil, apperr.Transport("failed to update pinned models", err)
	}

	return toPreferenceResponse(result), nil
}

func (s *preferenceService) ListModels(ctx context.Context, userId uuid.UUID) ([]*dto.ModelResponse, error) {
	models, err := s.aggregator.Models(ctx)
	if err != nil {
		return nil, apperr.Transport("failed to load model catalog", err)
	}

	pref := s.load(ctx, userId)
	pinnedRank := map[string]int{}
	for i, id := range pref.PinnedModels {
		pinnedRank[id] = i
	}

	for i := range models {
		_, models[i].Pinned = pinnedRank[models[i].Id]
	}

	// Pinned models first in pin order, the rest newest release first.
	sort.SliceStable(models, func(i, j int) bool {
		ri, iPinned := pinnedRank[models[i].Id]
		rj, jPinned := pinnedRank[models[j].Id]
		if iPinned != jPinned {
			return iPinned
		}
		if iPinned && jPinned {
			return ri < rj
		}
		return models[i].ReleasedAt.After(models[j].ReleasedAt)
	})

	out := make([]*dto.ModelResponse, len(models))
	for i, m := range models {
		out[i] = &dto.ModelResponse{
			Id:          m.Id,
			Name:        m.Name,
			Provider:    m.Provider,
			ReleasedAt:  m.ReleasedAt,
			Reasoning:   m.Reasoning,
			InputImages: m.InputImages,
			Pinned:      m.Pinned,
		}
	}
	return out, nil
}

func togglePinned(pinned []string, model string) []string {
	for i, id := range pinned {
		if id == model {
			return append(append([]string{}, pinned[:i]...), pinned[i+1:]...)
		}
	}
	return append(append([]string{}, pinned...), model)
}

func toPreferenceResponse(pref *entity.UserPreference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		PinnedModels:      pref.PinnedModels,
		LastSelectedModel: pref.LastSelectedModel,
		UpdatedAt:         pref.UpdatedAt,
	}
}
