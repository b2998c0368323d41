package service

import (
	"context"
	"encoding/json"
	"log"

	"chatbot-be/internal/pkg/logger"
	"chatbot-be/internal/websocket"
	"chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus and turns chat lifecycle events
// into websocket pushes for the owning user.
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
	var envelope struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Event received", map[string]interface{}{
		"type": envelope.Type,
	})

	switch envelope.Type {
	case events.TypeTurnAppended, events.TypeSessionEnded:
		cs.notifyUser(envelope.Type, envelope.Payload)
	}

	msg.Ack()
}

func (cs *consumerService) notifyUser(eventType string, payload map[string]interface{}) {
	if cs.hub == nil {
		return
	}

	userIDStr, ok := payload["user_id"].(string)
	if !ok {
		cs.logger.Warn("ConsumerService", "Event without user_id, skipping push", map[string]interface{}{"type": eventType})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		cs.logger.Warn("ConsumerService", "Bad user_id in event", map[string]interface{}{"user_id": userIDStr})
		return
	}

	cs.hub.Send(userID, websocket.Notification{
		Type: eventType,
		Data: payload,
	})
}
