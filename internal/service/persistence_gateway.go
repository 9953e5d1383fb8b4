package service

import (
	"context"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IPersistenceGateway is the durable store for sessions and their messages.
// All failures are returned as *StorageError.
type IPersistenceGateway interface {
	Insert(ctx context.Context, session *entity.ChatSession) error
	// Save writes the session row and all of its messages, sorted by timestamp.
	Save(ctx context.Context, session *entity.ChatSession) error
	// Delete removes the session and every message it owns in one transaction.
	Delete(ctx context.Context, sessionId uuid.UUID) error
	// FetchSessions lists sessions most recently updated first, messages loaded.
	FetchSessions(ctx context.Context) ([]*entity.ChatSession, error)
	// FetchSession returns ErrSessionNotFound (wrapped) when id is unknown.
	FetchSession(ctx context.Context, sessionId uuid.UUID) (*entity.ChatSession, error)
}

type persistenceGateway struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPersistenceGateway(uowFactory unitofwork.RepositoryFactory) IPersistenceGateway {
	return &persistenceGateway{uowFactory: uowFactory}
}

func (g *persistenceGateway) Insert(ctx context.Context, session *entity.ChatSession) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	return storageErr("insert", uow.ChatSessionRepository().Create(ctx, session))
}

func (g *persistenceGateway) Save(ctx context.Context, session *entity.ChatSession) error {
	messages := entity.CloneMessages(entity.SortedByTimestamp(session.Messages))
	for _, m := range messages {
		m.ChatSessionId = session.Id
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("save", err)
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Save(ctx, session); err != nil {
		return storageErr("save", err)
	}
	if err := uow.ChatMessageRepository().SaveAll(ctx, messages); err != nil {
		return storageErr("save", err)
	}

	return storageErr("save", uow.Commit())
}

func (g *persistenceGateway) Delete(ctx context.Context, sessionId uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("delete", err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return storageErr("delete", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return storageErr("delete", err)
	}

	return storageErr("delete", uow.Commit())
}

func (g *persistenceGateway) FetchSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAllOrderByUpdatedDesc(ctx)
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.Id)
	}

	messages, err := uow.ChatMessageRepository().FindAllByChatSessionIds(ctx, ids)
	if err != nil {
		return nil, storageErr("fetch", err)
	}

	bySession := make(map[uuid.UUID][]*entity.ChatMessage, len(sessions))
	for _, m := range messages {
		bySession[m.ChatSessionId] = append(bySession[m.ChatSessionId], m)
	}
	for _, s := range sessions {
		s.Messages = entity.SortedByTimestamp(bySession[s.Id])
	}

	return sessions, nil
}

func (g *persistenceGateway) FetchSession(ctx context.Context, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	if session == nil {
		return nil, storageErr("fetch", ErrSessionNotFound)
	}

	messages, err := uow.ChatMessageRepository().FindAllByChatSessionIds(ctx, []uuid.UUID{sessionId})
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	session.Messages = entity.SortedByTimestamp(messages)

	return session, nil
}
