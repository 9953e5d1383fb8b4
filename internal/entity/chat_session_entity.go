package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Messages in display order. Sorted by CreatedAt only when persisted.
	Messages []*ChatMessage
}

// Clone returns a deep copy so snapshots never alias engine state.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = CloneMessages(s.Messages)
	return &c
}
