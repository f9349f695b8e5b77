package mapper

import (
	"encoding/json"
	"time"

	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Thread Mappers

func (m *ChatMapper) ThreadToEntity(t *model.Thread) *entity.Thread {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		d := t.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	var tagIds []uuid.UUID
	if len(t.TagIds) > 0 {
		_ = json.Unmarshal(t.TagIds, &tagIds)
	}

	return &entity.Thread{
		Id:            t.Id,
		UserId:        t.UserId,
		Title:         t.Title,
		Pinned:        t.Pinned,
		CurrentModel:  t.CurrentModel,
		LastUsedModel: t.LastUsedModel,
		TagIds:        tagIds,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     t.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ThreadToModel(t *entity.Thread) *model.Thread {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	var tagIds datatypes.JSON
	if len(t.TagIds) > 0 {
		raw, _ := json.Marshal(t.TagIds)
		tagIds = raw
	}

	return &model.Thread{
		Id:            t.Id,
		UserId:        t.UserId,
		Title:         t.Title,
		Pinned:        t.Pinned,
		CurrentModel:  t.CurrentModel,
		LastUsedModel: t.LastUsedModel,
		TagIds:        tagIds,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		u := msg.UpdatedAt
		updatedAt = &u
	}

	var attachments []entity.Attachment
	if len(msg.Attachments) > 0 {
		_ = json.Unmarshal(msg.Attachments, &attachments)
	}

	var metrics *entity.TokenMetrics
	if len(msg.Metrics) > 0 {
		metrics = &entity.TokenMetrics{}
		if err := json.Unmarshal(msg.Metrics, metrics); err != nil {
			metrics = nil
		}
	}

	var annotations []entity.Annotation
	if len(msg.Annotations) > 0 {
		_ = json.Unmarshal(msg.Annotations, &annotations)
	}

	return &entity.Message{
		Id:          msg.Id,
		ThreadId:    msg.ThreadId,
		Role:        msg.Role,
		Content:     msg.Content,
		Reasoning:   msg.Reasoning,
		Attachments: attachments,
		Metrics:     metrics,
		Annotations: annotations,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var attachments datatypes.JSON
	if len(msg.Attachments) > 0 {
		raw, _ := json.Marshal(msg.Attachments)
		attachments = raw
	}

	var metrics datatypes.JSON
	if msg.Metrics != nil {
		raw, _ := json.Marshal(msg.Metrics)
		metrics = raw
	}

	var annotations datatypes.JSON
	if len(msg.Annotations) > 0 {
		raw, _ := json.Marshal(msg.Annotations)
		annotations = raw
	}

	return &model.Message{
		Id:          msg.Id,
		ThreadId:    msg.ThreadId,
		Role:        msg.Role,
		Content:     msg.Content,
		Reasoning:   msg.Reasoning,
		Attachments: attachments,
		Metrics:     metrics,
		Annotations: annotations,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
