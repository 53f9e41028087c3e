package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "AI"
)

// Chat represents the database model
type Chat struct {
	UUID          uuid.UUID      `gorm:"type:uuid;primaryKey;" json:"uuid"`
	Title         string         `gorm:"not null" json:"title"`
	CreatedAt     time.Time      `json:"created_at"`
	Conversations []Conversation `gorm:"foreignKey:ChatUUID;constraint:OnDelete:CASCADE" json:"conversations"`
}

// Conversation is a single message inside a chat. Rows are never
// updated after insert.
type Conversation struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey;" json:"uuid"`
	ChatUUID  uuid.UUID `gorm:"not null;index" json:"chat_uuid"`
	Role      Role      `gorm:"not null" json:"role"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
