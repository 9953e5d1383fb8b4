package events

import (
	"context"
	"errors"
	"testing"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Publish(ctx context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestNotifier_PublishesTypedEvents(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, logger.NewNopLogger())
	sessionId, messageId := uuid.New(), uuid.New()

	n.SessionCreated(context.Background(), sessionId, "New Session")
	n.MessageAppended(context.Background(), sessionId, messageId, "user")
	n.FeedbackGiven(context.Background(), messageId, "positive")
	n.RatingSet(context.Background(), messageId, 4)
	n.SessionDeleted(context.Background(), sessionId)

	require.Len(t, sink.events, 5)
	assert.Equal(t, TypeSessionCreated, sink.events[0].EventType())
	assert.Equal(t, sessionId.String(), sink.events[0].Payload()["session_id"])
	assert.Equal(t, TypeMessageAppended, sink.events[1].EventType())
	assert.Equal(t, "user", sink.events[1].Payload()["author"])
	assert.Equal(t, TypeFeedbackGiven, sink.events[2].EventType())
	assert.Equal(t, TypeRatingSet, sink.events[3].EventType())
	assert.Equal(t, 4, sink.events[3].Payload()["stars"])
	assert.Equal(t, TypeSessionDeleted, sink.events[4].EventType())
	assert.False(t, sink.events[4].Timestamp().IsZero())
}

func TestNotifier_FailuresAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("nats down")}
	n := NewNotifier(sink, logger.NewNopLogger())

	assert.NotPanics(t, func() { n.SessionDeleted(context.Background(), uuid.New()) })
	assert.Len(t, sink.events, 1)
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.SessionCreated(context.Background(), uuid.New(), "x") })

	n = NewNotifier(nil, logger.NewNopLogger())
	assert.NotPanics(t, func() { n.RatingSet(context.Background(), uuid.New(), 3) })
}
