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

type ITagService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTagRequest) (*dto.TagResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateTagRequest) (*dto.TagResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID) ([]*dto.TagResponse, error)
}

type tagService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTagService(uowFactory unitofwork.RepositoryFactory) ITagService {
	return &tagService{uowFactory: uowFactory}
}

func (s *tagService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTagRequest) (*dto.TagResponse, error) {
	tag := entity.Tag{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TagRepository().Create(ctx, &tag); err != nil {
		return nil, apperr.Transport("failed to create tag", err)
	}
	return toTagResponse(&tag), nil
}

func (s *tagService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateTagRequest) (*dto.TagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tag, err := uow.TagRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load tag", err)
	}
	if tag == nil {
		return nil, apperr.NotFound("tag not found")
	}

	tag.Name = req.Name
	tag.Color = req.Color
	now := time.Now()
	tag.UpdatedAt = &now

	if err := uow.TagRepository().Update(ctx, tag); err != nil {
		return nil, apperr.Transport("failed to update tag", err)
	}
	return toTagResponse(tag), nil
}

func (s *tagService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tag, err := uow.TagRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return apperr.Transport("failed to load tag", err)
	}
	if tag == nil {
		return apperr.NotFound("tag not found")
	}
	if err := uow.TagRepository().Delete(ctx, id); err != nil {
		return apperr.Transport("failed to delete tag", err)
	}
	return nil
}

func (s *tagService) List(ctx context.Context, userId uuid.UUID) ([]*dto.TagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tags, err := uow.TagRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "name", Desc: false},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load tags", err)
	}

	out := make([]*dto.TagResponse, len(tags))
	for i, t := range tags {
		out[i] = toTagResponse(t)
	}
	return out, nil
}

func toTagResponse(t *entity.Tag) *dto.TagResponse {
	return &dto.TagResponse{
		Id:        t.Id,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
