package mapper

import (
	"testing"
	"time"

	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMapper_MessageOptionalFields(t *testing.T) {
	m := NewChatMapper()
	now := time.Now()

	bare := &entity.ChatMessage{Id: uuid.New(), ChatSessionId: uuid.New(), Text: "hi", Author: entity.AuthorUser, CreatedAt: now}
	row := m.ChatMessageToModel(bare)
	assert.Nil(t, row.Feedback)
	assert.Nil(t, row.Rating)
	assert.Equal(t, "user", row.Author)

	negative := entity.FeedbackNegative
	stars := entity.StarRating(2)
	annotated := bare.Clone()
	annotated.Feedback = &negative
	annotated.Rating = &stars

	back := m.ChatMessageToEntity(m.ChatMessageToModel(annotated))
	require.NotNil(t, back.Feedback)
	require.NotNil(t, back.Rating)
	assert.Equal(t, entity.FeedbackNegative, *back.Feedback)
	assert.Equal(t, entity.StarRating(2), *back.Rating)
	assert.Equal(t, annotated.ChatSessionId, back.ChatSessionId)
}

func TestChatMapper_SessionRowCarriesNoMessages(t *testing.T) {
	m := NewChatMapper()
	session := &entity.ChatSession{Id: uuid.New(), Title: "t", Messages: []*entity.ChatMessage{{Id: uuid.New()}}}

	row := m.ChatSessionToModel(session)
	assert.Empty(t, row.Messages)

	assert.Nil(t, m.ChatSessionToEntity(nil))
	assert.Nil(t, m.ChatMessageToEntity((*model.ChatMessage)(nil)))
}

func TestCopilotDtoMapper(t *testing.T) {
	m := NewCopilotDtoMapper()
	positive := entity.FeedbackPositive
	session := &entity.ChatSession{Id: uuid.New(), Title: "Acme"}
	session.Messages = []*entity.ChatMessage{
		{Id: uuid.New(), ChatSessionId: session.Id, Text: "a", Author: entity.AuthorUser},
		{Id: uuid.New(), ChatSessionId: session.Id, Text: "b", Author: entity.AuthorAssistant, Feedback: &positive},
	}

	detail := m.SessionToDetailResponse(session)

	assert.Equal(t, "Acme", detail.Title)
	assert.Equal(t, 2, detail.MessageCount)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "assistant", detail.Messages[1].Author)
	require.NotNil(t, detail.Messages[1].Feedback)
	assert.Equal(t, "positive", *detail.Messages[1].Feedback)
	assert.Nil(t, detail.Messages[0].Rating)
	assert.Empty(t, m.SessionsToResponse(nil))
}
