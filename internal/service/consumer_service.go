package service

import (
	"context"
	"encoding/json"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/pkg/logger"
	"ai-chathub-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService bridges stream events from the in-process bus to the
// websocket hub.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.StreamEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal stream event", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack invalid messages to prevent infinite retry.
		msg.Ack()
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		cs.logger.Error("ConsumerService", "Stream event carries invalid user id", map[string]interface{}{
			"user_id": payload.UserId,
		})
		msg.Ack()
		return
	}

	frame, err := json.Marshal(map[string]interface{}{
		"type": payload.Type,
		"data": payload,
	})
	if err != nil {
		msg.Ack()
		return
	}

	cs.hub.Send(userId, frame)
	msg.Ack()
}
