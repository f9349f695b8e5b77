package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListThreadsRequest struct {
	// Cursor is the updated_at of the last thread from the previous page.
	Cursor *time.Time `query:"cursor"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=100"`
}

type ThreadResponse struct {
	Id            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Pinned        bool        `json:"pinned"`
	CurrentModel  string      `json:"current_model,omitempty"`
	LastUsedModel string      `json:"last_used_model,omitempty"`
	TagIds        []uuid.UUID `json:"tag_ids,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at"`
}

type ListThreadsResponse struct {
	Threads    []ThreadResponse `json:"threads"`
	NextCursor *time.Time       `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

type ShowThreadResponse struct {
	Thread   ThreadResponse    `json:"thread"`
	Messages []MessageResponse `json:"messages"`
}

// UpdateThreadRequest carries a partial update; nil fields are untouched.
type UpdateThreadRequest struct {
	Id           uuid.UUID
	Title        *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Pinned       *bool        `json:"pinned"`
	CurrentModel *string      `json:"current_model"`
	TagIds       *[]uuid.UUID `json:"tag_ids"`
}

type SelectThreadRequest struct {
	ThreadId string `json:"thread_id" validate:"required"`
}

type SelectThreadResponse struct {
	SelectedThreadId string `json:"selected_thread_id"`
	// CancelledStream reports whether selecting away stopped an in-flight
	// response on another thread.
	CancelledStream bool `json:"cancelled_stream"`
}

type NewChatContextResponse struct {
	// TempThreadId is the client-correlation id until the server assigns a
	// permanent one on first send.
	TempThreadId string `json:"temp_thread_id"`
}
