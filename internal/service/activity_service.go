package service

import (
	"context"
	"strings"

	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/pkg/events"
	pktNats "sales-copilot-be/pkg/nats"
)

const (
	activitySubject = "events.>"
	activityDurable = "copilot-activity-worker"
	activityPrefix  = "COPILOT_"
)

// EventSource is implemented by the NATS subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// ActivityDelivery pushes frames to connected clients. Implemented by the websocket hub.
type ActivityDelivery interface {
	Broadcast(frame dto.StreamFrame)
}

// ActivityService relays copilot domain events to websocket clients as
// activity frames. Instances share one durable consumer, so each event is
// consumed once and the hub fans it out across the cluster.
type ActivityService struct {
	source   EventSource
	delivery ActivityDelivery
	logger   logger.ILogger
}

func NewActivityService(source EventSource, delivery ActivityDelivery, log logger.ILogger) *ActivityService {
	return &ActivityService{
		source:   source,
		delivery: delivery,
		logger:   log,
	}
}

func (s *ActivityService) Start(ctx context.Context) error {
	if err := s.source.Subscribe(ctx, activitySubject, activityDurable, s.handleEvent); err != nil {
		s.logger.Error("ActivityService", "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ActivityService", "Activity relay started", map[string]interface{}{"subject": activitySubject})
	return nil
}

func (s *ActivityService) handleEvent(ctx context.Context, event events.Event) error {
	eventType := strings.TrimPrefix(event.EventType(), "events.")
	if !strings.HasPrefix(eventType, activityPrefix) {
		return nil
	}

	s.delivery.Broadcast(dto.StreamFrame{
		Type: dto.FrameTypeActivity,
		Data: dto.ActivityResponse{
			Type:       eventType,
			Data:       event.Payload(),
			OccurredAt: event.Timestamp(),
		},
	})
	return nil
}
