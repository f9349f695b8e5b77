package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"

	// TempThreadPrefix marks a client-generated thread id that the server has
	// not yet replaced with a permanent one.
	TempThreadPrefix = "temp-"

	AttachmentKindImage    = "image"
	AttachmentKindDocument = "document"

	// TitleMaxChars bounds auto-generated thread titles.
	TitleMaxChars = 80
)

const (
	ReasoningEffortLow    = "low"
	ReasoningEffortMedium = "medium"
	ReasoningEffortHigh   = "high"
)

// Topic names for the in-process event bus.
const (
	ChatStreamTopic      = "CHAT_STREAM_EVENTS"
	ThreadLifecycleTopic = "THREAD_LIFECYCLE_EVENTS"
)
