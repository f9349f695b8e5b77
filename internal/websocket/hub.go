package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-chathub-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel is the redis pub/sub channel bridging stream events across
// instances, so a user's devices receive frames no matter which instance
// holds their websocket.
const clusterChannel = "cluster_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout; nil in single-instance runs.
	rdb *redis.Client

	// instanceID tags published frames so this instance can skip its own
	// messages coming back off the cluster channel.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers one stream-event frame to every local connection the user
// has, then publishes it for other instances.
func (h *Hub) Send(userID uuid.UUID, frame []byte) {
	h.mu.RLock()
	clients, localFound := h.clients[userID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- frame:
			default:
				// A reader that cannot keep up with stream frames is dropped
				// rather than allowed to stall the stream. The unregister
				// handler owns closing the send channel.
				h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterPayload{
			SourceInstance: h.instanceID,
			TargetUserID:   userID.String(),
			Message:        frame,
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

type clusterPayload struct {
	SourceInstance string          `json:"source_instance"`
	TargetUserID   string          `json:"target_user_id"`
	Message        json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.deliverClusterFrame(payload)
	}
}

// deliverClusterFrame hands a cluster frame to local connections. Frames this
// instance published are skipped; Send already delivered them locally.
func (h *Hub) deliverClusterFrame(payload clusterPayload) {
	if payload.SourceInstance == h.instanceID {
		return
	}

	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients, ok := h.clients[uid]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- payload.Message:
		default:
			h.unregister <- client
		}
	}
}
