package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService publishes JSON payloads on a single in-process topic.
type IPublisherService interface {
	Publish(ctx context.Context, payload any) error
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
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

func (ps *publisherService) Publish(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

func (ps *publisherService) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return ps.pubSub.Subscribe(ctx, ps.topicName)
}
