package aggregator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chathub-be/internal/entity"

	"github.com/pkoukk/tiktoken-go"
)

// Client talks to the LLM aggregator's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// No overall timeout: streams are bounded by the caller's context.
		httpClient: &http.Client{},
	}
}

type ReasoningOptions struct {
	Enabled bool   `json:"enabled"`
	Effort  string `json:"effort,omitempty"`
}

type WebSearchOptions struct {
	Enabled bool   `json:"enabled"`
	Effort  string `json:"effort,omitempty"`
}

type AttachmentPayload struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	DataURL     string `json:"data_url,omitempty"`
	TextContent string `json:"text_content,omitempty"`
}

type ChatRequest struct {
	// ThreadID is omitted for new threads; the stream then carries a
	// thread_created event with the server-issued id.
	ThreadID     string              `json:"thread_id,omitempty"`
	Content      string              `json:"content"`
	Model        string              `json:"model"`
	SystemPrompt string              `json:"system_prompt,omitempty"`
	Attachments  []AttachmentPayload `json:"attachments,omitempty"`
	Reasoning    *ReasoningOptions   `json:"reasoning,omitempty"`
	WebSearch    *WebSearchOptions   `json:"web_search,omitempty"`
}

// wireEvent mirrors one SSE data frame from the aggregator.
type wireEvent struct {
	Type        string              `json:"type"`
	Content     string              `json:"content,omitempty"`
	Reasoning   string              `json:"reasoning,omitempty"`
	Usage       *TokenUsage         `json:"usage,omitempty"`
	Annotations []entity.Annotation `json:"annotations,omitempty"`
	ThreadID    string              `json:"thread_id,omitempty"`
	ThreadTitle string              `json:"thread_title,omitempty"`
	Message     *FinalMessage       `json:"message,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Stream opens the chat completion stream. Events arrive on the returned
// channel in wire order; the channel closes after a completed or error event,
// or when ctx is cancelled. Cancellation stops delivery without emitting a
// completion.
func (c *Client) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("aggregator stream request failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(body),
		)
	}

	events := make(chan StreamEvent)
	go c.readStream(ctx, res.Body, events)
	return events, nil
}

func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var we wireEvent
		if err := json.Unmarshal([]byte(data), &we); err != nil {
			// A malformed frame poisons everything after it; stop here.
			c.emit(ctx, events, StreamEvent{Type: EventError, Err: fmt.Errorf("failed to decode stream frame: %w", err)})
			return
		}

		ev, ok := c.toStreamEvent(we)
		if !ok {
			continue
		}
		if !c.emit(ctx, events, ev) {
			return
		}
		if ev.Type == EventCompleted || ev.Type == EventError {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation surfaces as a read error; the caller already
		// chose to stop, so stay silent in that case.
		if ctx.Err() == nil {
			c.emit(ctx, events, StreamEvent{Type: EventError, Err: fmt.Errorf("stream read failed: %w", err)})
		}
	}
}

func (c *Client) emit(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) toStreamEvent(we wireEvent) (StreamEvent, bool) {
	switch EventType(we.Type) {
	case EventContent:
		return StreamEvent{Type: EventContent, Content: we.Content}, true
	case EventReasoning:
		return StreamEvent{Type: EventReasoning, Reasoning: we.Reasoning}, true
	case EventUsage:
		return StreamEvent{Type: EventUsage, Usage: we.Usage}, true
	case EventAnnotations:
		return StreamEvent{Type: EventAnnotations, Annotations: we.Annotations}, true
	case EventThreadCreated:
		return StreamEvent{Type: EventThreadCreated, ThreadID: we.ThreadID, ThreadTitle: we.ThreadTitle}, true
	case EventCompleted:
		return StreamEvent{Type: EventCompleted, Message: we.Message}, true
	case EventError:
		return StreamEvent{Type: EventError, Err: fmt.Errorf("aggregator error: %s", we.Error)}, true
	default:
		// Unknown event types are skipped so the aggregator can add kinds
		// without breaking older clients.
		return StreamEvent{}, false
	}
}

type modelsResponse struct {
	Models []entity.ModelInfo `json:"models"`
}

// Models fetches the selectable model catalog.
func (c *Client) Models(ctx context.Context) ([]entity.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator models request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(body),
		)
	}

	var mr modelsResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, err
	}
	return mr.Models, nil
}

// EstimateInputTokens gives a local token count for the outgoing prompt so
// metrics have a starting input figure before the first usage snapshot.
func (c *Client) EstimateInputTokens(model, content string) int {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0
		}
	}
	return len(tke.Encode(content, nil, nil))
}

// StartUsage seeds a metrics snapshot at send time.
func StartUsage(inputTokens int) *entity.TokenMetrics {
	return &entity.TokenMetrics{
		InputTokens: inputTokens,
		TotalTokens: inputTokens,
		StartedAt:   time.Now(),
	}
}
