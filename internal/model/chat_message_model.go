package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Text          string    `gorm:"type:text;not null"`
	Author        string    `gorm:"type:varchar(16);not null"`
	Feedback      *string   `gorm:"type:varchar(16)"`
	Rating        *int      `gorm:"type:smallint;check:rating BETWEEN 1 AND 5"`
	CreatedAt     time.Time `gorm:"not null;index;autoCreateTime:false"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
