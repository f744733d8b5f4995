package conversation

import (
	"context"
	"time"
)

// Pagination bounds list queries.
type Pagination struct {
	Page     int
	PageSize int
}

// Repository persists conversation metadata.
type Repository interface {
	Create(ctx context.Context, conversation *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindLatestByUserChannel(ctx context.Context, userID, channel string) (*Conversation, error)
	ListByUser(ctx context.Context, userID string, p Pagination) ([]Conversation, error)
	UpdateSummary(ctx context.Context, id uint, summary string) error
	TouchLastMessageAt(ctx context.Context, id uint, at time.Time) error
}

// MessageRepository persists the messages of a conversation. Insert assigns
// the next per-conversation sequence under the conversation row lock and
// bumps last_message_at in the same transaction.
type MessageRepository interface {
	Insert(ctx context.Context, msg *Message) error
	BulkInsert(ctx context.Context, msgs []Message) error
	ListRecent(ctx context.Context, conversationID uint, limit int) ([]Message, error)
	ListByConversationID(ctx context.Context, conversationID uint) ([]Message, error)
}

// ActionRepository persists the audit trail of executed tool calls.
type ActionRepository interface {
	Insert(ctx context.Context, action *Action) error
	ListByConversationID(ctx context.Context, conversationID uint) ([]Action, error)
}
