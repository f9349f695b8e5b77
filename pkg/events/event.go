package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "THREAD_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Thread lifecycle event types consumed by downstream analytics and
// housekeeping workers.
const (
	ThreadCreated = "THREAD_CREATED"
	ThreadDeleted = "THREAD_DELETED"
	ThreadUpdated = "THREAD_UPDATED"
	ChatCompleted = "CHAT_COMPLETED"
)
