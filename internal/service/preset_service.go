package service

import (
	"context"
	"time"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/pkg/apperr"
	"ai-chathub-be/internal/repository/specification"
	"ai-chathub-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPresetService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePresetRequest) (*dto.PresetResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePresetRequest) (*dto.PresetResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID) ([]*dto.PresetResponse, error)
}

type presetService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPresetService(uowFactory unitofwork.RepositoryFactory) IPresetService {
	return &presetService{uowFactory: uowFactory}
}

func (s *presetService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePresetRequest) (*dto.PresetResponse, error) {
	preset := entity.Preset{
		Id:           uuid.New(),
		UserId:       userId,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		DefaultModel: req.DefaultModel,
		CreatedAt:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PresetRepository().Create(ctx, &preset); err != nil {
		return nil, apperr.Transport("failed to create preset", err)
	}
	return toPresetResponse(&preset), nil
}

func (s *presetService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePresetRequest) (*dto.PresetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	preset, err := uow.PresetRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load preset", err)
	}
	if preset == nil {
		return nil, apperr.NotFound("preset not found")
	}

	preset.Name = req.Name
	preset.SystemPrompt = req.SystemPrompt
	preset.DefaultModel = req.DefaultModel
	now := time.Now()
	preset.UpdatedAt = &now

	if err := uow.PresetRepository().Update(ctx, preset); err != nil {
		return nil, apperr.Transport("failed to update preset", err)
	}
	return toPresetResponse(preset), nil
}

func (s *presetService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	preset, err := uow.PresetRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return apperr.Transport("failed to load preset", err)
	}
	if preset == nil {
		return apperr.NotFound("preset not found")
	}
	if err := uow.PresetRepository().Delete(ctx, id); err != nil {
		return apperr.Transport("failed to delete preset", err)
	}
	return nil
}

func (s *presetService) List(ctx context.Context, userId uuid.UUID) ([]*dto.PresetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	presets, err := uow.PresetRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load presets", err)
	}

	out := make([]*dto.PresetResponse, len(presets))
	for i, p := range presets {
		out[i] = toPresetResponse(p)
	}
	return out, nil
}

func toPresetResponse(p *entity.Preset) *dto.PresetResponse {
	return &dto.PresetResponse{
		Id:           p.Id,
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
		DefaultModel: p.DefaultModel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
