package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false"`

	Messages []ChatMessage `gorm:"foreignKey:ChatSessionId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
