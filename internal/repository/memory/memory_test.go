package memory

import (
	"context"
	"testing"
	"time"

	"sales-copilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_OrderAndRows(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := &entity.ChatSession{Id: uuid.New(), Title: "older", CreatedAt: base, UpdatedAt: base}
	newer := &entity.ChatSession{Id: uuid.New(), Title: "newer", CreatedAt: base, UpdatedAt: base.Add(time.Minute),
		Messages: []*entity.ChatMessage{{Id: uuid.New()}}}

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	assert.Error(t, repo.Create(ctx, older))

	list, err := repo.FindAllOrderByUpdatedDesc(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	assert.Nil(t, list[0].Messages)

	missing, err := repo.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, older.Id))
	list, err = repo.FindAllOrderByUpdatedDesc(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMessageRepository_OwnershipAndOrder(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)
	repo := uow.ChatMessageRepository()

	sessionA, sessionB := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: sessionA, Text: "late", CreatedAt: base.Add(time.Second)}
	early := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: sessionA, Text: "early", CreatedAt: base}
	other := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: sessionB, Text: "other", CreatedAt: base}

	require.NoError(t, repo.SaveAll(ctx, []*entity.ChatMessage{late, early, other}))

	found, err := repo.FindAllByChatSessionIds(ctx, []uuid.UUID{sessionA})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "early", found[0].Text)
	assert.Equal(t, "late", found[1].Text)

	stolen := early.Clone()
	stolen.ChatSessionId = sessionB
	assert.Error(t, repo.SaveAll(ctx, []*entity.ChatMessage{stolen}))
	assert.Error(t, repo.SaveAll(ctx, []*entity.ChatMessage{{Id: uuid.New()}}))

	require.NoError(t, repo.DeleteByChatSessionId(ctx, sessionA))
	found, err = repo.FindAllByChatSessionIds(ctx, []uuid.UUID{sessionA})
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = repo.FindAllByChatSessionIds(ctx, []uuid.UUID{sessionB})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUnitOfWork_RollbackRestores(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())

	kept := &entity.ChatSession{Id: uuid.New(), Title: "kept"}
	seed := factory.NewUnitOfWork(ctx)
	require.NoError(t, seed.Begin(ctx))
	require.NoError(t, seed.ChatSessionRepository().Save(ctx, kept))
	require.NoError(t, seed.Commit())

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	require.NoError(t, uow.ChatSessionRepository().Delete(ctx, kept.Id))
	require.NoError(t, uow.ChatSessionRepository().Save(ctx, &entity.ChatSession{Id: uuid.New(), Title: "discarded"}))
	require.NoError(t, uow.Rollback())
	assert.Error(t, uow.Rollback())

	list, err := factory.NewUnitOfWork(ctx).ChatSessionRepository().FindAllOrderByUpdatedDesc(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Title)
}

func TestUnitOfWork_RollbackKeepsWritesOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	require.NoError(t, tx.ChatSessionRepository().Save(ctx, &entity.ChatSession{Id: uuid.New(), Title: "discarded"}))

	outside := &entity.ChatSession{Id: uuid.New(), Title: "outside"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ChatSessionRepository().Create(ctx, outside))
	msg := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: outside.Id, Text: "hi"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ChatMessageRepository().SaveAll(ctx, []*entity.ChatMessage{msg}))

	require.NoError(t, tx.Rollback())

	uow := factory.NewUnitOfWork(ctx)
	list, err := uow.ChatSessionRepository().FindAllOrderByUpdatedDesc(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "outside", list[0].Title)

	msgs, err := uow.ChatMessageRepository().FindAllByChatSessionIds(ctx, []uuid.UUID{outside.Id})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestUnitOfWork_RollbackRestoresOverwrittenMessage(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	session := uuid.New()
	msg := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: session, Text: "original"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ChatMessageRepository().SaveAll(ctx, []*entity.ChatMessage{msg}))

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	edited := msg.Clone()
	edited.Text = "edited"
	require.NoError(t, tx.ChatMessageRepository().SaveAll(ctx, []*entity.ChatMessage{edited}))
	require.NoError(t, tx.ChatMessageRepository().SaveAll(ctx, []*entity.ChatMessage{edited}))
	require.NoError(t, tx.ChatMessageRepository().DeleteByChatSessionId(ctx, session))
	require.NoError(t, tx.Rollback())

	msgs, err := factory.NewUnitOfWork(ctx).ChatMessageRepository().FindAllByChatSessionIds(ctx, []uuid.UUID{session})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "original", msgs[0].Text)
}

func TestUnitOfWork_BeginHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)
	assert.ErrorIs(t, uow.Begin(ctx), context.Canceled)
	assert.Error(t, uow.Commit())
}
