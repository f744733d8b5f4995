// Package entities holds the GORM schema types and their converters to and
// from the domain models.
package entities

import (
	"time"

	"homehub/assistant-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID      string    `gorm:"size:64;uniqueIndex;not null"`
	UserID        string    `gorm:"size:64;index:idx_conversation_user_channel;not null"`
	Channel       string    `gorm:"size:16;index:idx_conversation_user_channel;not null"`
	Summary       string    `gorm:"type:text"`
	StartedAt     time.Time `gorm:"not null"`
	LastMessageAt time.Time `gorm:"index;not null"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts the database entity to the domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:            c.ID,
		PublicID:      c.PublicID,
		UserID:        c.UserID,
		Channel:       c.Channel,
		Summary:       c.Summary,
		StartedAt:     c.StartedAt,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from the domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:            c.ID,
		PublicID:      c.PublicID,
		UserID:        c.UserID,
		Channel:       c.Channel,
		Summary:       c.Summary,
		StartedAt:     c.StartedAt,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
