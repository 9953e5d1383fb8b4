package service

import (
	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/mapper"
)

// StateSnapshot is an immutable copy of everything the presentation layer
// observes. Version increases by one with every published change.
type StateSnapshot struct {
	Version       uint64                `json:"version"`
	ActiveSession *entity.ChatSession   `json:"active_session"`
	Messages      []*entity.ChatMessage `json:"messages"`
	Capturing     bool                  `json:"capturing"`
	PendingInput  string                `json:"pending_input"`
	Processing    bool                  `json:"processing"`
	ProgressSteps []string              `json:"progress_steps"`
	LiveSpeech    bool                  `json:"live_speech"`
	Sessions      []*entity.ChatSession `json:"sessions"`
	Offline       bool                  `json:"offline"`
	QuickActions  []string              `json:"quick_actions"`
}

// snapshotLocked copies engine state. Callers hold e.mu.
func (e *chatEngine) snapshotLocked() StateSnapshot {
	var active *entity.ChatSession
	if e.active != nil {
		active = e.active.Clone()
		active.Messages = nil
	}

	sessions := make([]*entity.ChatSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s.Clone())
	}

	progress := make([]string, len(e.progress))
	copy(progress, e.progress)

	quickActions := make([]string, len(e.quickActions))
	copy(quickActions, e.quickActions)

	messages := entity.CloneMessages(e.messages)
	if messages == nil {
		messages = make([]*entity.ChatMessage, 0)
	}

	return StateSnapshot{
		Version:       e.version,
		ActiveSession: active,
		Messages:      messages,
		Capturing:     e.capturing,
		PendingInput:  e.pendingInput,
		Processing:    e.processing,
		ProgressSteps: progress,
		LiveSpeech:    e.liveSpeech,
		Sessions:      sessions,
		Offline:       e.offline.Load(),
		QuickActions:  quickActions,
	}
}

var stateMapper = mapper.NewCopilotDtoMapper()

// ToResponse maps the snapshot to its wire shape.
func (s StateSnapshot) ToResponse() *dto.StateResponse {
	return &dto.StateResponse{
		Version:       s.Version,
		ActiveSession: stateMapper.SessionToResponse(s.ActiveSession),
		Messages:      stateMapper.MessagesToResponse(s.Messages),
		Capturing:     s.Capturing,
		PendingInput:  s.PendingInput,
		Processing:    s.Processing,
		ProgressSteps: s.ProgressSteps,
		LiveSpeech:    s.LiveSpeech,
		Sessions:      stateMapper.SessionsToResponse(s.Sessions),
		Offline:       s.Offline,
		QuickActions:  s.QuickActions,
	}
}
