package mapper

import (
	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

// ChatSessionToEntity maps the session row only. Messages are attached by the caller.
func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	return &model.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var feedback *entity.Feedback
	if msg.Feedback != nil {
		f := entity.Feedback(*msg.Feedback)
		feedback = &f
	}

	var rating *entity.StarRating
	if msg.Rating != nil {
		r := entity.StarRating(*msg.Rating)
		rating = &r
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Text:          msg.Text,
		Author:        entity.Author(msg.Author),
		CreatedAt:     msg.CreatedAt,
		Feedback:      feedback,
		Rating:        rating,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var feedback *string
	if msg.Feedback != nil {
		f := string(*msg.Feedback)
		feedback = &f
	}

	var rating *int
	if msg.Rating != nil {
		r := int(*msg.Rating)
		rating = &r
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Text:          msg.Text,
		Author:        string(msg.Author),
		Feedback:      feedback,
		Rating:        rating,
		CreatedAt:     msg.CreatedAt,
	}
}

// Batch methods

func (m *ChatMapper) ChatMessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = m.ChatMessageToEntity(msg)
	}
	return out
}

func (m *ChatMapper) ChatMessagesToModels(msgs []*entity.ChatMessage) []*model.ChatMessage {
	out := make([]*model.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = m.ChatMessageToModel(msg)
	}
	return out
}
