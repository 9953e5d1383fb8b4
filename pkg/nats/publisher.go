package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName     = "COPILOT_EVENTS"
	SubjectPrefix  = "events."
	StreamSubjects = "events.>"
)

// Publisher sends domain events to the JetStream stream.
type Publisher struct {
	js     jetstream.JetStream
	logger logger.ILogger
}

// NewPublisher ensures the events stream exists on nc. A failure to create the
// stream is only logged since it usually means the stream already exists.
func NewPublisher(nc *nats.Conn, log logger.ILogger) (*Publisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{StreamSubjects},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		log.Warn("NATS", "Failed to ensure events stream", map[string]interface{}{"stream": StreamName, "error": err.Error()})
	}

	return &Publisher{js: js, logger: log}, nil
}

// Publish sends an event on "events.<TYPE>". The envelope carries the type and
// timestamp so subscribers can rebuild the event without parsing the subject.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := SubjectPrefix + event.EventType()
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
