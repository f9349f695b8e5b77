package session

import (
	"strings"
	"time"

	"ai-chathub-be/internal/constant"
	"ai-chathub-be/internal/entity"
)

// State is the per-user conversational state held in memory between
// requests: the optimistic local view of the thread list and the currently
// selected thread. Every mutation flows through the thread service.
type State struct {
	UserID           string           `json:"user_id"`
	SelectedThreadID string           `json:"selected_thread_id"` // may be temp-prefixed; empty means new-chat context
	Threads          []*entity.Thread `json:"threads"`
	NextCursor       *time.Time       `json:"next_cursor"`
	HasMore          bool             `json:"has_more"`
}

// IsTempThreadID reports whether id is a client-generated placeholder the
// server has not yet replaced.
func IsTempThreadID(id string) bool {
	return strings.HasPrefix(id, constant.TempThreadPrefix)
}

// SameLogicalThread reports whether switching from prev to next is merely a
// temp-to-real id correction of one logical thread rather than a real switch.
func SameLogicalThread(prev, next, tempOf string) bool {
	if prev == next {
		return true
	}
	return IsTempThreadID(prev) && prev == tempOf
}
