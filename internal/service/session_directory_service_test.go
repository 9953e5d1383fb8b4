package service

import (
	"context"
	"testing"
	"time"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDirectory_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	directory, _ := newMemoryDirectory()

	older, err := directory.Create(ctx, "older")
	require.NoError(t, err)
	newer, err := directory.Create(ctx, "newer")
	require.NoError(t, err)

	older.UpdatedAt = newer.UpdatedAt.Add(time.Minute)
	require.NoError(t, directory.Save(ctx, older))

	sessions, err := directory.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, older.Id, sessions[0].Id)
	assert.Equal(t, newer.Id, sessions[1].Id)
}

func TestSessionDirectory_MostRecentOrNew(t *testing.T) {
	ctx := context.Background()
	directory, _ := newMemoryDirectory()

	first, err := directory.MostRecentOrNew(ctx, "New Session")
	require.NoError(t, err)
	assert.Equal(t, "New Session", first.Title)

	second, err := directory.MostRecentOrNew(ctx, "Other Title")
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	sessions, err := directory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSessionDirectory_MostRecentOrNewConcurrent(t *testing.T) {
	ctx := context.Background()
	directory, _ := newMemoryDirectory()

	done := make(chan *entity.ChatSession, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			s, _ := directory.MostRecentOrNew(ctx, "New Session")
			done <- s
		}()
	}
	var ids = map[string]struct{}{}
	for i := 0; i < cap(done); i++ {
		s := <-done
		require.NotNil(t, s)
		ids[s.Id.String()] = struct{}{}
	}

	assert.Len(t, ids, 1)
}

func TestSessionDirectory_CreateReturnsSessionOnFailure(t *testing.T) {
	directory := NewSessionDirectory(failingGateway{}, nil, logger.NewNopLogger())

	session, err := directory.Create(context.Background(), "offline")

	require.Error(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "offline", session.Title)
}

func TestSessionDirectory_Find(t *testing.T) {
	ctx := context.Background()
	directory, _ := newMemoryDirectory()

	created, err := directory.Create(ctx, "find me")
	require.NoError(t, err)

	found, err := directory.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "find me", found.Title)
	assert.Empty(t, found.Messages)

	require.NoError(t, directory.Delete(ctx, created))
	_, err = directory.Find(ctx, created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
