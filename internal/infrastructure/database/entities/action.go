package entities

import (
	"time"

	"homehub/assistant-api/internal/domain/conversation"
)

// Action persists one audit row per executed tool call.
type Action struct {
	ID             uint   `gorm:"primaryKey"`
	PublicID       string `gorm:"size:64;uniqueIndex;not null"`
	ConversationID uint   `gorm:"index;not null"`
	UserID         string `gorm:"size:64;index;not null"`
	ActionType     string `gorm:"size:128;not null"`
	Summary        string `gorm:"type:text"`
	Channel        string `gorm:"size:16;not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for Action.
func (Action) TableName() string {
	return "actions"
}

// EtoD converts the database entity to the domain model.
func (a *Action) EtoD() *conversation.Action {
	return &conversation.Action{
		ID:             a.ID,
		PublicID:       a.PublicID,
		ConversationID: a.ConversationID,
		UserID:         a.UserID,
		ActionType:     a.ActionType,
		Summary:        a.Summary,
		Channel:        a.Channel,
		CreatedAt:      a.CreatedAt,
	}
}

// NewSchemaAction creates a database entity from the domain model.
func NewSchemaAction(a *conversation.Action) *Action {
	return &Action{
		ID:             a.ID,
		PublicID:       a.PublicID,
		ConversationID: a.ConversationID,
		UserID:         a.UserID,
		ActionType:     a.ActionType,
		Summary:        a.Summary,
		Channel:        a.Channel,
		CreatedAt:      a.CreatedAt,
	}
}
