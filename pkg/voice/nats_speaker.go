package voice

import (
	"sales-copilot-be/internal/pkg/logger"

	"github.com/nats-io/nats.go"
)

// NatsSpeaker hands text to the speech synthesis engine over NATS.
type NatsSpeaker struct {
	nc      *nats.Conn
	subject string
	logger  logger.ILogger
}

func NewNatsSpeaker(nc *nats.Conn, subject string, log logger.ILogger) *NatsSpeaker {
	return &NatsSpeaker{nc: nc, subject: subject, logger: log}
}

func (s *NatsSpeaker) Speak(text string) {
	if text == "" || s.nc == nil {
		return
	}
	if err := s.nc.Publish(s.subject, []byte(text)); err != nil {
		s.logger.Warn("Voice", "Failed to hand text to speaker", map[string]interface{}{"subject": s.subject, "error": err.Error()})
	}
}
