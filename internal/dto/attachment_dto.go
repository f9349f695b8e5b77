package dto

import (
	"github.com/google/uuid"
)

type AttachmentResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mime_type"`
	Kind        string    `json:"kind"`
	TextContent string    `json:"text_content,omitempty"`
	Progress    float64   `json:"progress"`
	Error       string    `json:"error,omitempty"`
}

type AttachmentRejectionResponse struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// UploadAttachmentsResponse reports every file from a multi-file upload:
// processed ones (possibly individually failed) plus up-front rejections.
type UploadAttachmentsResponse struct {
	Attachments []AttachmentResponse          `json:"attachments"`
	Rejections  []AttachmentRejectionResponse `json:"rejections,omitempty"`
}
