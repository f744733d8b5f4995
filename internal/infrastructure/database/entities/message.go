package entities

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"homehub/assistant-api/internal/domain/conversation"
)

// Message stores each persisted turn row for a conversation. ToolCalls is
// only set on assistant rows produced mid-loop.
type Message struct {
	ID             uint            `gorm:"primaryKey"`
	PublicID       string          `gorm:"size:64;uniqueIndex;not null"`
	ConversationID uint            `gorm:"uniqueIndex:idx_message_conversation_sequence;index;not null"`
	Role           string          `gorm:"size:16;not null"`
	Content        string          `gorm:"type:text"`
	ToolCalls      datatypes.JSON  `gorm:"type:jsonb"`
	InputTokens    int
	OutputTokens   int
	ModelTier      string          `gorm:"size:16"`
	CostCents      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Sequence       int             `gorm:"uniqueIndex:idx_message_conversation_sequence;not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the database entity to the domain model.
func (m *Message) EtoD() (*conversation.Message, error) {
	var toolCalls []conversation.ToolCall
	if len(m.ToolCalls) > 0 {
		if err := json.Unmarshal(m.ToolCalls, &toolCalls); err != nil {
			return nil, err
		}
	}

	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		ToolCalls:      toolCalls,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		ModelTier:      m.ModelTier,
		CostCents:      m.CostCents,
		Sequence:       m.Sequence,
		CreatedAt:      m.CreatedAt,
	}, nil
}

// NewSchemaMessage creates a database entity from the domain model.
func NewSchemaMessage(m *conversation.Message) (*Message, error) {
	var toolCalls datatypes.JSON
	if len(m.ToolCalls) > 0 {
		raw, err := json.Marshal(m.ToolCalls)
		if err != nil {
			return nil, err
		}
		toolCalls = raw
	}

	return &Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		ToolCalls:      toolCalls,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		ModelTier:      m.ModelTier,
		CostCents:      m.CostCents,
		Sequence:       m.Sequence,
		CreatedAt:      m.CreatedAt,
	}, nil
}
