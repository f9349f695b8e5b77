package controller

import (
	"ai-chathub-be/internal/pkg/serverutils"
	"ai-chathub-be/internal/service"
	"ai-chathub-be/pkg/attachment"

	"github.com/gofiber/fiber/v2"
)

type IAttachmentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type attachmentController struct {
	attachmentService service.IAttachmentService
}

func NewAttachmentController(attachmentService service.IAttachmentService) IAttachmentController {
	return &attachmentController{
		attachmentService: attachmentService,
	}
}

func (c *attachmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/attachment/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
}

// Upload takes a multipart batch under the "files" field. attached_images
// and attached_documents report what the message being composed already
// carries, so count limits span multiple drops.
func (c *attachmentController) Upload(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files provided")
	}

	files := make([]attachment.File, 0, len(headers))
	opened := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
		}
		opened = append(opened, f)
		files = append(files, attachment.File{
			Info: attachment.FileInfo{
				Name:     h.Filename,
				Size:     h.Size,
				MimeType: h.Header.Get("Content-Type"),
			},
			Reader: f,
		})
	}

	attachedImages := ctx.QueryInt("attached_images", 0)
	attachedDocuments := ctx.QueryInt("attached_documents", 0)

	res, err := c.attachmentService.Upload(ctx.Context(), userId, files, attachedImages, attachedDocuments)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process attachments", res))
}
