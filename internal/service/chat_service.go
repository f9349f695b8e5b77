package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-chathub-be/internal/constant"
	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/pkg/apperr"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/internal/repository/specification"
	"ai-chathub-be/internal/repository/unitofwork"
	"ai-chathub-be/internal/session"
	"ai-chathub-be/pkg/aggregator"
	"ai-chathub-be/pkg/events"
	pktNats "ai-chathub-be/pkg/nats"
	"ai-chathub-be/pkg/stream"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	CancelStream(ctx context.Context, userId uuid.UUID) (*dto.CancelStreamResponse, error)
	// Shutdown cancels every in-flight stream on application teardown.
	Shutdown()
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	sessions          *memory.SessionStateRepository
	staging           *memory.AttachmentStagingRepository
	streams           *session.StreamRegistry
	aggregator        *aggregator.Client
	preferenceService IPreferenceService
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionStateRepository,
	staging *memory.AttachmentStagingRepository,
	streams *session.StreamRegistry,
	aggregatorClient *aggregator.Client,
	preferenceService IPreferenceService,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		sessions:          sessions,
		staging:           staging,
		streams:           streams,
		aggregator:        aggregatorClient,
		preferenceService: preferenceService,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	threadID := req.ThreadId
	if threadID == "" {
		if state, ok := s.sessions.Get(userId.String()); ok {
			threadID = state.SelectedThreadID
		}
	}
	if threadID == "" {
		threadID = constant.TempThreadPrefix + uuid.NewString()
	}

	var thread *entity.Thread
	if !session.IsTempThreadID(threadID) {
		id, err := uuid.Parse(threadID)
		if err != nil {
			return nil, apperr.Validation("invalid thread id")
		}
		uow := s.uowFactory.NewUnitOfWork(ctx)
		thread, err = uow.ThreadRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, apperr.Transport("failed to load thread", err)
		}
		if thread == nil {
			return nil, apperr.NotFound("thread not found")
		}
	}

	model := req.Model
	if model == "" && thread != nil {
		model = thread.CurrentModel
	}

	systemPrompt := ""
	if req.PresetId != nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		preset, err := uow.PresetRepository().FindOne(ctx,
			specification.ByID{ID: *req.PresetId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, apperr.Transport("failed to load preset", err)
		}
		if preset == nil {
			return nil, apperr.NotFound("preset not found")
		}
		systemPrompt = preset.SystemPrompt
		if model == "" {
			model = preset.DefaultModel
		}
	}
	if model == "" {
		model = s.preferenceService.LastSelectedModel(ctx, userId)
	}

	attachments, payloads := s.takeAttachments(userId, req.AttachmentIds)

	userMsg := &entity.Message{
		Id:          uuid.New(),
		Role:        constant.MessageRoleUser,
		Content:     req.Content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
	placeholder := &entity.Message{
		Id:          uuid.New(),
		Role:        constant.MessageRoleAssistant,
		IsStreaming: true,
		Metrics:     aggregator.StartUsage(s.aggregator.EstimateInputTokens(model, req.Content)),
		CreatedAt:   time.Now(),
	}

	chatReq := &aggregator.ChatRequest{
		Content:      req.Content,
		Model:        model,
		SystemPrompt: systemPrompt,
		Attachments:  payloads,
	}
	if thread != nil {
		chatReq.ThreadID = thread.Id.String()
	}
	if req.Reasoning != nil {
		chatReq.Reasoning = &aggregator.ReasoningOptions{Enabled: req.Reasoning.Enabled, Effort: req.Reasoning.Effort}
	}
	if req.WebSearch != nil {
		chatReq.WebSearch = &aggregator.WebSearchOptions{Enabled: req.WebSearch.Enabled, Effort: req.WebSearch.Effort}
	}

	// A new send replaces whatever was streaming for this user.
	s.streams.CancelFor(userId.String())

	// The stream outlives the HTTP request that started it.
	streamCtx, cancel := context.WithCancel(context.Background())
	eventCh, err := s.aggregator.Stream(streamCtx, chatReq)
	if err != nil {
		cancel()
		return nil, apperr.Transport("failed to open aggregator stream", err)
	}

	s.streams.Register(userId.String(), &session.ActiveStream{ThreadID: threadID, Cancel: cancel})

	title := ""
	if thread != nil {
		title = thread.Title
	}
	st := stream.NewState(threadID, title, nil).WithSend(userMsg, placeholder)

	s.sessions.Update(userId.String(), func(state *session.State) {
		state.SelectedThreadID = threadID
	})

	go s.consume(streamCtx, userId, model, thread, st, eventCh)

	return &dto.SendMessageResponse{
		ThreadId:      threadID,
		UserMessageId: userMsg.Id,
		PlaceholderId: placeholder.Id,
	}, nil
}

func (s *chatService) CancelStream(ctx context.Context, userId uuid.UUID) (*dto.CancelStreamResponse, error) {
	active, ok := s.streams.Get(userId.String())
	if !ok {
		return &dto.CancelStreamResponse{Cancelled: false}, nil
	}
	threadID := active.ThreadID
	cancelled := s.streams.CancelFor(userId.String())
	return &dto.CancelStreamResponse{ThreadId: threadID, Cancelled: cancelled}, nil
}

func (s *chatService) Shutdown() {
	s.streams.CancelAll()
}

// consume drives the reducer over the event stream, fans each snapshot out
// to the user's connections, and persists the exchange when it settles.
func (s *chatService) consume(ctx context.Context, userId uuid.UUID, model string, thread *entity.Thread, st stream.State, eventCh <-chan aggregator.StreamEvent) {
	userMsg := *st.Messages[len(st.Messages)-2]

	// A temp-id send persists its thread row up front; the thread-created
	// event then carries the permanent id through the same reducer path the
	// aggregator's own events take.
	if session.IsTempThreadID(st.ThreadID) {
		tempID := st.ThreadID
		created, err := s.createThread(userId, model, userMsg.Content)
		if err != nil {
			st = stream.Apply(st, aggregator.StreamEvent{Type: aggregator.EventError, Err: err})
			s.fanout(userId, st, aggregator.EventError, err)
			s.streams.Release(userId.String())
			return
		}
		thread = created
		st = stream.Apply(st, aggregator.StreamEvent{
			Type:        aggregator.EventThreadCreated,
			ThreadID:    created.Id.String(),
			ThreadTitle: created.Title,
		})
		s.streams.Rekey(userId.String(), created.Id.String())
		s.swapSelection(userId, created, tempID)
		s.fanout(userId, st, aggregator.EventThreadCreated, nil)
	}

	for ev := range eventCh {
		st = stream.Apply(st, ev)

		switch ev.Type {
		case aggregator.EventCompleted:
			s.persistExchange(userId, model, thread, st, userMsg)
			s.fanout(userId, st, ev.Type, nil)
			s.streams.Release(userId.String())
			s.publishCompleted(userId, thread)
			return
		case aggregator.EventError:
			s.fanout(userId, st, ev.Type, ev.Err)
			s.streams.Release(userId.String())
			return
		default:
			s.fanout(userId, st, ev.Type, nil)
		}
	}

	// Channel closed without a terminal event: either the caller cancelled
	// the stream, or the aggregator hung up early. The registry entry is
	// released on every exit path.
	s.streams.Release(userId.String())

	if ctx.Err() != nil {
		// Applied partial content stays, marked non-streaming.
		st = st.WithCancelled()
		s.persistExchange(userId, model, thread, st, userMsg)
		s.fanout(userId, st, "cancelled", nil)
		return
	}

	// A clean close with no completed or error frame is a transport failure:
	// the client must see the stream end rather than wait forever.
	streamErr := apperr.Transport("aggregator closed the stream before completion", nil)
	st = stream.Apply(st, aggregator.StreamEvent{Type: aggregator.EventError, Err: streamErr})
	s.fanout(userId, st, aggregator.EventError, streamErr)
}

func (s *chatService) createThread(userId uuid.UUID, model, firstContent string) (*entity.Thread, error) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFn()

	thread := &entity.Thread{
		Id:            uuid.New(),
		UserId:        userId,
		Title:         deriveTitle(firstContent),
		CurrentModel:  model,
		LastUsedModel: model,
		CreatedAt:     time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ThreadRepository().Create(ctx, thread); err != nil {
		return nil, apperr.Transport("failed to create thread", err)
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.ThreadCreated,
			Data: map[string]interface{}{
				"thread_id": thread.Id.String(),
				"user_id":   userId.String(),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Failed to publish thread created event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return thread, nil
}

// swapSelection atomically replaces the temp thread id in the session state:
// selection, thread list, no duplicate left behind. The swap only touches the
// selection when it still points at this send's own temp id, so a new-chat
// context opened meanwhile keeps its selection.
func (s *chatService) swapSelection(userId uuid.UUID, thread *entity.Thread, tempID string) {
	s.sessions.Update(userId.String(), func(state *session.State) {
		if session.SameLogicalThread(state.SelectedThreadID, thread.Id.String(), tempID) {
			state.SelectedThreadID = thread.Id.String()
		}
		for _, t := range state.Threads {
			if t.Id == thread.Id {
				return
			}
		}
		state.Threads = append([]*entity.Thread{thread}, state.Threads...)
	})
}

func (s *chatService) persistExchange(userId uuid.UUID, model string, thread *entity.Thread, st stream.State, userMsg entity.Message) {
	if thread == nil {
		return
	}

	ctx, cancelFn := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelFn()

	assistant := findMessage(st.Messages, st.PlaceholderID)
	if assistant == nil {
		return
	}

	userMsg.ThreadId = thread.Id
	persisted := *assistant
	persisted.ThreadId = thread.Id

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().CreateBulk(ctx, []*entity.Message{&userMsg, &persisted}); err != nil {
		s.logger.Error("ChatService", "Failed to persist exchange", map[string]interface{}{
			"thread_id": thread.Id,
			"error":     err.Error(),
		})
		return
	}

	if _, err := uow.ThreadRepository().UpdateFields(ctx, thread.Id, map[string]interface{}{
		"last_used_model": model,
	}); err != nil {
		s.logger.Warn("ChatService", "Failed to update thread last used model", map[string]interface{}{
			"thread_id": thread.Id,
			"error":     err.Error(),
		})
	}
}

func (s *chatService) publishCompleted(userId uuid.UUID, thread *entity.Thread) {
	if s.eventPublisher == nil || thread == nil {
		return
	}
	ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFn()
	evt := events.BaseEvent{
		Type: events.ChatCompleted,
		Data: map[string]interface{}{
			"thread_id": thread.Id.String(),
			"user_id":   userId.String(),
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ChatService", "Failed to publish chat completed event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// fanout publishes the current message snapshot for one event onto the
// in-process bus; the consumer bridges it to the websocket hub.
func (s *chatService) fanout(userId uuid.UUID, st stream.State, eventType aggregator.EventType, evErr error) {
	msg := findMessage(st.Messages, st.PlaceholderID)

	payload := dto.StreamEventMessage{
		UserId:      userId.String(),
		ThreadId:    st.ThreadID,
		Type:        string(eventType),
		ThreadTitle: st.ThreadTitle,
	}
	if msg != nil {
		resp := toMessageResponse(msg, st.ThreadID)
		payload.Message = &resp
	}
	if evErr != nil {
		payload.Error = evErr.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("ChatService", "Failed to marshal stream event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFn()
	if err := s.publisherService.Publish(ctx, constant.ChatStreamTopic, data); err != nil {
		s.logger.Warn("ChatService", "Failed to publish stream event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *chatService) takeAttachments(userId uuid.UUID, ids []uuid.UUID) ([]entity.Attachment, []aggregator.AttachmentPayload) {
	var attachments []entity.Attachment
	var payloads []aggregator.AttachmentPayload
	for _, id := range ids {
		att, found := s.staging.Take(userId.String(), id)
		if !found {
			s.logger.Warn("ChatService", "Staged attachment missing, skipping", map[string]interface{}{
				"attachment_id": id,
			})
			continue
		}
		attachments = append(attachments, *att)
		payloads = append(payloads, aggregator.AttachmentPayload{
			Kind:        att.Kind,
			Name:        att.Name,
			MimeType:    att.MimeType,
			DataURL:     att.DataURL,
			TextContent: att.TextContent,
		})
	}
	return attachments, payloads
}

func findMessage(msgs []*entity.Message, id uuid.UUID) *entity.Message {
	for _, m := range msgs {
		if m.Id == id {
			return m
		}
	}
	return nil
}

// deriveTitle takes the first line of the first message, bounded.
func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	runes := []rune(title)
	if len(runes) > constant.TitleMaxChars {
		title = string(runes[:constant.TitleMaxChars])
	}
	if title == "" {
		title = "New chat"
	}
	return title
}
