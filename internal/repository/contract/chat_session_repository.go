package contract

import (
	"context"

	"sales-copilot-be/internal/entity"

	"github.com/google/uuid"
)

// ChatSessionRepository persists session rows. Messages are handled by ChatMessageRepository.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// Save inserts or updates the session row.
	Save(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindById returns nil, nil when the session does not exist.
	FindById(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	// FindAllOrderByUpdatedDesc lists sessions, most recently updated first.
	FindAllOrderByUpdatedDesc(ctx context.Context) ([]*entity.ChatSession, error)
}
