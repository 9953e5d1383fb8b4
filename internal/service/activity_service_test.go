package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/pkg/events"
	pktNats "sales-copilot-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedSource struct {
	subject, durable string
	handler          pktNats.EventHandler
	err              error
}

func (s *capturedSource) Subscribe(_ context.Context, subject, durable string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return s.err
}

type recordingDelivery struct {
	frames []dto.StreamFrame
}

func (d *recordingDelivery) Broadcast(frame dto.StreamFrame) {
	d.frames = append(d.frames, frame)
}

func TestActivityService_RelaysCopilotEvents(t *testing.T) {
	source := &capturedSource{}
	delivery := &recordingDelivery{}
	svc := NewActivityService(source, delivery, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "events.>", source.subject)
	require.NotNil(t, source.handler)

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, source.handler(context.Background(), events.BaseEvent{
		Type:       events.TypeRatingSet,
		Data:       map[string]interface{}{"stars": float64(4)},
		OccurredAt: at,
	}))
	require.NoError(t, source.handler(context.Background(), events.BaseEvent{Type: "SUBSCRIPTION_CREATED"}))

	require.Len(t, delivery.frames, 1)
	frame := delivery.frames[0]
	assert.Equal(t, dto.FrameTypeActivity, frame.Type)
	activity, ok := frame.Data.(dto.ActivityResponse)
	require.True(t, ok)
	assert.Equal(t, events.TypeRatingSet, activity.Type)
	assert.Equal(t, at, activity.OccurredAt)
	assert.Equal(t, float64(4), activity.Data["stars"])
}

func TestActivityService_StartFailure(t *testing.T) {
	source := &capturedSource{err: errors.New("no stream")}
	svc := NewActivityService(source, &recordingDelivery{}, logger.NewNopLogger())

	assert.Error(t, svc.Start(context.Background()))
}
