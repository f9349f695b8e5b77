package service

import (
	"context"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/pkg/attachment"

	"github.com/google/uuid"
)

type IAttachmentService interface {
	// Upload validates and processes a dropped batch. attachedImages and
	// attachedDocuments are the counts already bound to the message being
	// composed, so count limits hold across multiple drops.
	Upload(ctx context.Context, userId uuid.UUID, files []attachment.File, attachedImages, attachedDocuments int) (*dto.UploadAttachmentsResponse, error)
}

type attachmentService struct {
	validator *attachment.Validator
	processor *attachment.Processor
	staging   *memory.AttachmentStagingRepository
	logger    logger.ILogger
}

func NewAttachmentService(
	validator *attachment.Validator,
	processor *attachment.Processor,
	staging *memory.AttachmentStagingRepository,
	log logger.ILogger,
) IAttachmentService {
	return &attachmentService{
		validator: validator,
		processor: processor,
		staging:   staging,
		logger:    log,
	}
}

func (s *attachmentService) Upload(ctx context.Context, userId uuid.UUID, files []attachment.File, attachedImages, attachedDocuments int) (*dto.UploadAttachmentsResponse, error) {
	infos := make([]attachment.FileInfo, len(files))
	for i, f := range files {
		infos[i] = f.Info
	}

	batch := s.validator.ValidateBatch(infos, attachedImages, attachedDocuments)

	// Rejections never block the accepted siblings.
	accepted := make([]attachment.File, 0, len(batch.Accepted))
	used := make([]bool, len(files))
	for _, a := range batch.Accepted {
		for i, f := range files {
			if !used[i] && f.Info == a.File {
				used[i] = true
				f.Kind = a.Kind
				accepted = append(accepted, f)
				break
			}
		}
	}

	processed := s.processor.ProcessBatch(ctx, accepted)

	resp := &dto.UploadAttachmentsResponse{}
	for _, att := range processed {
		if !att.Failed() {
			s.staging.Put(userId.String(), att)
		} else {
			s.logger.Warn("AttachmentService", "Attachment processing failed", map[string]interface{}{
				"user_id": userId,
				"name":    att.Name,
				"error":   att.Error,
			})
		}
		resp.Attachments = append(resp.Attachments, toAttachmentResponse(att))
	}
	for _, rej := range batch.Rejections {
		resp.Rejections = append(resp.Rejections, dto.AttachmentRejectionResponse{
			Name:    rej.File.Name,
			Reason:  string(rej.Reason),
			Message: rej.Message,
		})
	}
	return resp, nil
}

func toAttachmentResponse(att *entity.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		Id:          att.Id,
		Name:        att.Name,
		Size:        att.Size,
		MimeType:    att.MimeType,
		Kind:        att.Kind,
		TextContent: att.TextContent,
		Progress:    att.Progress,
		Error:       att.Error,
	}
}
