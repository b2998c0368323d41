package service

import (
	"context"
	"encoding/json"

	"chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService puts lifecycle events on the in-process bus.
type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

// eventEnvelope is the wire form on the bus; the type travels with the
// payload so consumers can switch on it.
type eventEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func (s *publisherService) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(eventEnvelope{
		Type:    event.EventType(),
		Payload: event.Payload(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topicName, msg)
}
