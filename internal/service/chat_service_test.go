package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/internal/session"
	"ai-chathub-be/pkg/aggregator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeStreamPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte{}, payload...)
	f.payloads = append(f.payloads, cp)
	return nil
}

func (f *fakeStreamPublisher) events(t *testing.T) []dto.StreamEventMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]dto.StreamEventMessage, 0, len(f.payloads))
	for _, p := range f.payloads {
		var msg dto.StreamEventMessage
		require.NoError(t, json.Unmarshal(p, &msg))
		out = append(out, msg)
	}
	return out
}

// The aggregator can drop the connection after partial output without ever
// sending a completed or error frame. The user must get a terminal error
// frame with the partial content, and the stream registry entry must go away
// so the next send is not treated as replacing a live stream.
func TestSendMessageStreamClosedWithoutCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"content\",\"content\":\"partial answer\"}\n\n")
	}))
	defer srv.Close()

	factory, uow := newFakeFactory()
	var mu sync.Mutex
	var createdId uuid.UUID
	uow.threads.createFn = func(_ context.Context, thread *entity.Thread) error {
		mu.Lock()
		createdId = thread.Id
		mu.Unlock()
		return nil
	}

	sessions := memory.NewSessionStateRepository()
	staging := memory.NewAttachmentStagingRepository()
	streams := session.NewStreamRegistry()
	pub := &fakeStreamPublisher{}

	svc := NewChatService(factory, sessions, staging, streams,
		aggregator.NewClient(srv.URL, "test-key"), nil, pub, nil, noopLogger{})

	userId := uuid.New()
	resp, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		Content: "hello",
		Model:   "gpt-test",
	})
	require.NoError(t, err)
	require.True(t, session.IsTempThreadID(resp.ThreadId))

	require.Eventually(t, func() bool {
		evs := pub.events(t)
		return len(evs) > 0 && evs[len(evs)-1].Type == string(aggregator.EventError)
	}, 3*time.Second, 10*time.Millisecond, "premature stream close must surface an error frame")

	_, active := streams.Get(userId.String())
	assert.False(t, active, "registry entry must be released once the stream ends")

	evs := pub.events(t)
	last := evs[len(evs)-1]
	assert.NotEmpty(t, last.Error)
	require.NotNil(t, last.Message)
	assert.False(t, last.Message.IsStreaming)
	assert.Equal(t, "partial answer", last.Message.Content)

	// The temp-to-real swap ran before the drop, so the session selection
	// already points at the persisted thread.
	mu.Lock()
	created := createdId
	mu.Unlock()
	state, ok := sessions.Get(userId.String())
	require.True(t, ok)
	assert.Equal(t, created.String(), state.SelectedThreadID)
}
