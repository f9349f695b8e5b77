package service

import (
	"context"
	"encoding/json"
	"fmt"
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
	"ai-chathub-be/pkg/events"
	pktNats "ai-chathub-be/pkg/nats"
	"ai-chathub-be/pkg/optimistic"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultThreadPageSize = 30

type IThreadService interface {
	LoadThreads(ctx context.Context, userId uuid.UUID, req *dto.ListThreadsRequest) (*dto.ListThreadsResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowThreadResponse, error)
	SelectThread(ctx context.Context, userId uuid.UUID, req *dto.SelectThreadRequest) (*dto.SelectThreadResponse, error)
	NewChatContext(ctx context.Context, userId uuid.UUID) (*dto.NewChatContextResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	TogglePin(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ThreadResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error)
}

type threadService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessions       *memory.SessionStateRepository
	streams        *session.StreamRegistry
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewThreadService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionStateRepository,
	streams *session.StreamRegistry,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IThreadService {
	return &threadService{
		uowFactory:     uowFactory,
		sessions:       sessions,
		streams:        streams,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// sessionState returns a read-only snapshot; writes go through sessions.Update.
func (s *threadService) sessionState(userId uuid.UUID) *session.State {
	if state, ok := s.sessions.Get(userId.String()); ok {
		return state
	}
	return &session.State{UserID: userId.String()}
}

func (s *threadService) LoadThreads(ctx context.Context, userId uuid.UUID, req *dto.ListThreadsRequest) (*dto.ListThreadsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultThreadPageSize
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		// One extra row decides has_more without a second query.
		specification.Limit{Count: limit + 1},
	}
	if req.Cursor != nil {
		specs = append(specs, specification.UpdatedBefore{Cursor: *req.Cursor})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	threads, err := uow.ThreadRepository().FindAll(ctx, specs...)
	if err != nil {
		// Previously loaded session state is kept untouched on failure.
		return nil, apperr.Transport("failed to load threads", err)
	}

	hasMore := len(threads) > limit
	if hasMore {
		threads = threads[:limit]
	}

	var nextCursor *time.Time
	if hasMore && len(threads) > 0 {
		nextCursor = threadCursor(threads[len(threads)-1])
	}

	s.sessions.Update(userId.String(), func(state *session.State) {
		if req.Cursor == nil {
			state.Threads = threads
		} else {
			state.Threads = append(state.Threads, threads...)
		}
		state.NextCursor = nextCursor
		state.HasMore = hasMore
	})

	resp := &dto.ListThreadsResponse{
		Threads:    make([]dto.ThreadResponse, 0, len(threads)),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
	for _, t := range threads {
		resp.Threads = append(resp.Threads, toThreadResponse(t))
	}
	return resp, nil
}

func (s *threadService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load thread", err)
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load messages", err)
	}

	resp := &dto.ShowThreadResponse{
		Thread:   toThreadResponse(thread),
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m, id.String()))
	}
	return resp, nil
}

func (s *threadService) SelectThread(ctx context.Context, userId uuid.UUID, req *dto.SelectThreadRequest) (*dto.SelectThreadResponse, error) {
	// Switching away from a live stream cancels it, except when the switch
	// is the temp-to-real id correction of the stream's own thread. The
	// registry is rekeyed to the real id as soon as it is known, so an id
	// match covers that case.
	cancelled := false
	if active, ok := s.streams.Get(userId.String()); ok && active.ThreadID != req.ThreadId {
		cancelled = s.streams.CancelFor(userId.String())
	}

	if !session.IsTempThreadID(req.ThreadId) {
		id, err := uuid.Parse(req.ThreadId)
		if err != nil {
			return nil, apperr.Validation("invalid thread id")
		}
		uow := s.uowFactory.NewUnitOfWork(ctx)
		thread, err := uow.ThreadRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, apperr.Transport("failed to load thread", err)
		}
		if thread == nil {
			s.sessions.Update(userId.String(), func(state *session.State) {
				state.SelectedThreadID = ""
			})
			return nil, apperr.NotFound("thread not found")
		}
	}

	s.sessions.Update(userId.String(), func(state *session.State) {
		state.SelectedThreadID = req.ThreadId
	})

	return &dto.SelectThreadResponse{
		SelectedThreadId: req.ThreadId,
		CancelledStream:  cancelled,
	}, nil
}

func (s *threadService) NewChatContext(ctx context.Context, userId uuid.UUID) (*dto.NewChatContextResponse, error) {
	// Starting a brand-new chat always stops whatever is streaming.
	s.streams.CancelFor(userId.String())

	tempId := constant.TempThreadPrefix + uuid.NewString()
	s.sessions.Update(userId.String(), func(state *session.State) {
		state.SelectedThreadID = tempId
	})

	return &dto.NewChatContextResponse{TempThreadId: tempId}, nil
}

func (s *threadService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return apperr.Transport("failed to load thread", err)
	}
	if thread == nil {
		return apperr.NotFound("thread not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := uow.MessageRepository().DeleteByThreadId(ctx, id); err != nil {
		uow.Rollback()
		return apperr.Transport("failed to delete thread messages", err)
	}
	if err := uow.ThreadRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return apperr.Transport("failed to delete thread", err)
	}
	if err := uow.Commit(); err != nil {
		return apperr.Transport("failed to delete thread", err)
	}

	// Local removal only happens after the store confirmed the delete.
	s.sessions.Update(userId.String(), func(state *session.State) {
		state.Threads = removeThread(state.Threads, id)
		if state.SelectedThreadID == id.String() {
			state.SelectedThreadID = ""
		}
	})

	s.publishLifecycle(ctx, events.ThreadDeleted, userId, id)
	return nil
}

func (s *threadService) TogglePin(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ThreadResponse, error) {
	thread, err := s.localThread(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	var result *entity.Thread
	err = optimistic.Mutate(ctx, *thread,
		func(t entity.Thread) entity.Thread {
			t.Pinned = !t.Pinned
			return t
		},
		func(ctx context.Context, t entity.Thread) (*entity.Thread, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			return uow.ThreadRepository().UpdateFields(ctx, id, map[string]interface{}{
				"pinned": t.Pinned,
			})
		},
		func(t entity.Thread) {
			s.commitThread(userId, &t)
			result = &t
		},
	)
	if err != nil {
		return nil, apperr.Transport("failed to update pin state", err)
	}

	s.publishLifecycle(ctx, events.ThreadUpdated, userId, id)
	resp := toThreadResponse(result)
	return &resp, nil
}

func (s *threadService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error) {
	thread, err := s.localThread(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Pinned != nil {
		fields["pinned"] = *req.Pinned
	}
	if req.CurrentModel != nil {
		fields["current_model"] = *req.CurrentModel
	}
	if req.TagIds != nil {
		encoded, err := json.Marshal(*req.TagIds)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tag ids: %w", err)
		}
		fields["tag_ids"] = datatypes.JSON(encoded)
	}
	if len(fields) == 0 {
		resp := toThreadResponse(thread)
		return &resp, nil
	}

	var result *entity.Thread
	err = optimistic.Mutate(ctx, *thread,
		func(t entity.Thread) entity.Thread {
			if req.Title != nil {
				t.Title = *req.Title
			}
			if req.Pinned != nil {
				t.Pinned = *req.Pinned
			}
			if req.CurrentModel != nil {
				t.CurrentModel = *req.CurrentModel
			}
			if req.TagIds != nil {
				t.TagIds = *req.TagIds
			}
			return t
		},
		func(ctx context.Context, t entity.Thread) (*entity.Thread, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			return uow.ThreadRepository().UpdateFields(ctx, req.Id, fields)
		},
		func(t entity.Thread) {
			s.commitThread(userId, &t)
			result = &t
		},
	)
	if err != nil {
		return nil, apperr.Transport("failed to update thread", err)
	}

	s.publishLifecycle(ctx, events.ThreadUpdated, userId, req.Id)
	resp := toThreadResponse(result)
	return &resp, nil
}

// localThread resolves a thread from the session state, falling back to the
// store, with ownership enforced either way.
func (s *threadService) localThread(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Thread, error) {
	state := s.sessionState(userId)
	for _, t := range state.Threads {
		if t.Id == id {
			return t, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.Transport("failed to load thread", err)
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}
	return thread, nil
}

// commitThread writes a thread value back into the session state list.
func (s *threadService) commitThread(userId uuid.UUID, thread *entity.Thread) {
	s.sessions.Update(userId.String(), func(state *session.State) {
		for i, t := range state.Threads {
			if t.Id == thread.Id {
				state.Threads[i] = thread
				return
			}
		}
		state.Threads = append([]*entity.Thread{thread}, state.Threads...)
	})
}

func (s *threadService) publishLifecycle(ctx context.Context, eventType string, userId uuid.UUID, threadId uuid.UUID) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"thread_id": threadId.String(),
			"user_id":   userId.String(),
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ThreadService", "Failed to publish lifecycle event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func threadCursor(t *entity.Thread) *time.Time {
	if t.UpdatedAt != nil {
		ts := *t.UpdatedAt
		return &ts
	}
	ts := t.CreatedAt
	return &ts
}

func removeThread(threads []*entity.Thread, id uuid.UUID) []*entity.Thread {
	out := make([]*entity.Thread, 0, len(threads))
	for _, t := range threads {
		if t.Id != id {
			out = append(out, t)
		}
	}
	return out
}

func toThreadResponse(t *entity.Thread) dto.ThreadResponse {
	return dto.ThreadResponse{
		Id:            t.Id,
		Title:         t.Title,
		Pinned:        t.Pinned,
		CurrentModel:  t.CurrentModel,
		LastUsedModel: t.LastUsedModel,
		TagIds:        t.TagIds,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message, threadId string) dto.MessageResponse {
	resp := dto.MessageResponse{
		Id:          m.Id,
		ThreadId:    threadId,
		Role:        m.Role,
		Content:     m.Content,
		Reasoning:   m.Reasoning,
		Attachments: m.Attachments,
		Annotations: m.Annotations,
		IsStreaming: m.IsStreaming,
		CreatedAt:   m.CreatedAt,
	}
	if m.Metrics != nil {
		resp.Metrics = &dto.TokenMetricsResponse{
			InputTokens:     m.Metrics.InputTokens,
			OutputTokens:    m.Metrics.OutputTokens,
			TotalTokens:     m.Metrics.TotalTokens,
			TokensPerSecond: m.Metrics.TokensPerSecond,
			DurationMs:      m.Metrics.DurationMs,
			TotalCostUSD:    m.Metrics.TotalCostUSD,
		}
	}
	return resp
}
