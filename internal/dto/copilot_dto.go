package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Feedback  *string   `json:"feedback"`
	Rating    *int      `json:"rating"`
}

type ChatSessionResponse struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type ChatSessionDetailResponse struct {
	ChatSessionResponse
	Messages []*ChatMessageResponse `json:"messages"`
}

type StateResponse struct {
	Version       uint64                 `json:"version"`
	ActiveSession *ChatSessionResponse   `json:"active_session"`
	Messages      []*ChatMessageResponse `json:"messages"`
	Capturing     bool                   `json:"capturing"`
	PendingInput  string                 `json:"pending_input"`
	Processing    bool                   `json:"processing"`
	ProgressSteps []string               `json:"progress_steps"`
	LiveSpeech    bool                   `json:"live_speech"`
	Sessions      []*ChatSessionResponse `json:"sessions"`
	Offline       bool                   `json:"offline"`
	QuickActions  []string               `json:"quick_actions"`
}

type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type ResumeSessionRequest struct {
	DefaultTitle string `json:"default_title" validate:"max=200"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type QuickActionRequest struct {
	Label string `json:"label"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=positive negative"`
}

type RatingRequest struct {
	Stars int `json:"stars" validate:"required,min=1,max=5"`
}

type PendingInputRequest struct {
	Text string `json:"text"`
}

type LiveSpeechRequest struct {
	Enabled bool `json:"enabled"`
}

// StreamFrame is one websocket message. Type is "state" or "activity".
type StreamFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type ActivityResponse struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

const (
	FrameTypeState    = "state"
	FrameTypeActivity = "activity"
)
