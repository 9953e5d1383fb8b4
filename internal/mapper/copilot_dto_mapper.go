package mapper

import (
	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/entity"
)

type CopilotDtoMapper struct{}

func NewCopilotDtoMapper() *CopilotDtoMapper {
	return &CopilotDtoMapper{}
}

func (m *CopilotDtoMapper) MessageToResponse(msg *entity.ChatMessage) *dto.ChatMessageResponse {
	if msg == nil {
		return nil
	}

	res := &dto.ChatMessageResponse{
		Id:        msg.Id,
		SessionId: msg.ChatSessionId,
		Text:      msg.Text,
		Author:    string(msg.Author),
		CreatedAt: msg.CreatedAt,
	}
	if msg.Feedback != nil {
		f := string(*msg.Feedback)
		res.Feedback = &f
	}
	if msg.Rating != nil {
		r := int(*msg.Rating)
		res.Rating = &r
	}
	return res
}

func (m *CopilotDtoMapper) MessagesToResponse(msgs []*entity.ChatMessage) []*dto.ChatMessageResponse {
	out := make([]*dto.ChatMessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.MessageToResponse(msg))
	}
	return out
}

func (m *CopilotDtoMapper) SessionToResponse(s *entity.ChatSession) *dto.ChatSessionResponse {
	if s == nil {
		return nil
	}
	return &dto.ChatSessionResponse{
		Id:           s.Id,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

func (m *CopilotDtoMapper) SessionsToResponse(sessions []*entity.ChatSession) []*dto.ChatSessionResponse {
	out := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, m.SessionToResponse(s))
	}
	return out
}

func (m *CopilotDtoMapper) SessionToDetailResponse(s *entity.ChatSession) *dto.ChatSessionDetailResponse {
	if s == nil {
		return nil
	}
	return &dto.ChatSessionDetailResponse{
		ChatSessionResponse: *m.SessionToResponse(s),
		Messages:            m.MessagesToResponse(s.Messages),
	}
}
