package events

import (
	"context"
	"time"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const (
	TypeSessionCreated  = "COPILOT_SESSION_CREATED"
	TypeSessionDeleted  = "COPILOT_SESSION_DELETED"
	TypeMessageAppended = "COPILOT_MESSAGE_APPENDED"
	TypeFeedbackGiven   = "COPILOT_FEEDBACK_GIVEN"
	TypeRatingSet       = "COPILOT_RATING_SET"
)

const publishTimeout = 2 * time.Second

// Sink is the transport a Notifier publishes through (the NATS publisher in production).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Notifier emits copilot domain events. Publishing is best effort: failures
// are logged and never reach the caller. A Notifier with a nil sink does nothing.
type Notifier struct {
	sink   Sink
	logger logger.ILogger
	now    func() time.Time
}

func NewNotifier(sink Sink, log logger.ILogger) *Notifier {
	return &Notifier{sink: sink, logger: log, now: time.Now}
}

func (n *Notifier) SessionCreated(ctx context.Context, sessionId uuid.UUID, title string) {
	n.publish(ctx, TypeSessionCreated, map[string]interface{}{
		"session_id": sessionId.String(),
		"title":      title,
	})
}

func (n *Notifier) SessionDeleted(ctx context.Context, sessionId uuid.UUID) {
	n.publish(ctx, TypeSessionDeleted, map[string]interface{}{
		"session_id": sessionId.String(),
	})
}

func (n *Notifier) MessageAppended(ctx context.Context, sessionId, messageId uuid.UUID, author string) {
	n.publish(ctx, TypeMessageAppended, map[string]interface{}{
		"session_id": sessionId.String(),
		"message_id": messageId.String(),
		"author":     author,
	})
}

func (n *Notifier) FeedbackGiven(ctx context.Context, messageId uuid.UUID, feedback string) {
	n.publish(ctx, TypeFeedbackGiven, map[string]interface{}{
		"message_id": messageId.String(),
		"feedback":   feedback,
	})
}

func (n *Notifier) RatingSet(ctx context.Context, messageId uuid.UUID, stars int) {
	n.publish(ctx, TypeRatingSet, map[string]interface{}{
		"message_id": messageId.String(),
		"stars":      stars,
	})
}

func (n *Notifier) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if n == nil || n.sink == nil {
		return
	}

	// detached from the caller so a finished request does not abort the publish
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := BaseEvent{Type: eventType, Data: data, OccurredAt: n.now()}
	if err := n.sink.Publish(pubCtx, evt); err != nil {
		n.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
