package contract

import (
	"context"

	"sales-copilot-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	// SaveAll upserts messages. Every message must already carry its ChatSessionId.
	SaveAll(ctx context.Context, messages []*entity.ChatMessage) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	// FindAllByChatSessionIds returns messages ordered by CreatedAt ascending.
	FindAllByChatSessionIds(ctx context.Context, sessionIds []uuid.UUID) ([]*entity.ChatMessage, error)
}
