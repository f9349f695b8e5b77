package entity

import "github.com/google/uuid"

// Attachment is an image or document bound to a message, encoded for
// transport. Created as a placeholder on file selection, mutated as
// processing progresses, then either finalized or marked failed.
type Attachment struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mime_type"`
	Kind        string    `json:"kind"`
	DataURL     string    `json:"data_url,omitempty"`
	TextContent string    `json:"text_content,omitempty"`
	Progress    float64   `json:"progress"`
	Error       string    `json:"error,omitempty"`
}

func (a *Attachment) Failed() bool {
	return a.Error != ""
}
