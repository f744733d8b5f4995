// Package conversation owns dialogue state: conversations, their messages,
// the audit trail of executed tool calls, and the session manager and
// context compressor operating over them.
package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channels a conversation can be held on.
const (
	ChannelWeb   = "web"
	ChannelSlack = "slack"
)

// Roles a persisted message can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one dialogue between a user and the assistant. It is
// created lazily on the first turn and never deleted by this service.
type Conversation struct {
	ID            uint      `json:"-"`
	PublicID      string    `json:"id"`
	UserID        string    `json:"user_id"`
	Channel       string    `json:"channel"`
	Summary       string    `json:"summary,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewConversation builds a conversation for the user on the channel.
func NewConversation(userID, channel string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		PublicID:      newPublicID("conv"),
		UserID:        userID,
		Channel:       channel,
		StartedAt:     now,
		LastMessageAt: now,
	}
}

// ToolCall records one tool_use request carried by an assistant message.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Message is one persisted dialogue entry, strictly ordered by Sequence
// within its conversation.
type Message struct {
	ID             uint            `json:"-"`
	PublicID       string          `json:"id"`
	ConversationID uint            `json:"-"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	ToolCalls      []ToolCall      `json:"tool_calls,omitempty"`
	InputTokens    int             `json:"input_tokens,omitempty"`
	OutputTokens   int             `json:"output_tokens,omitempty"`
	ModelTier      string          `json:"model_tier,omitempty"`
	CostCents      decimal.Decimal `json:"cost_cents,omitempty"`
	Sequence       int             `json:"sequence"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewUserMessage builds an unpersisted user message.
func NewUserMessage(content string) Message {
	return Message{
		PublicID: newPublicID("msg"),
		Role:     RoleUser,
		Content:  content,
	}
}

// NewAssistantMessage builds an unpersisted assistant message.
func NewAssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{
		PublicID:  newPublicID("msg"),
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// TokensUsed returns the message's total token count.
func (m Message) TokensUsed() int {
	return m.InputTokens + m.OutputTokens
}

// Action is the audit row for one executed tool call. It is written in the
// round that executed the call and never rolled back or replayed.
type Action struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	UserID         string    `json:"user_id"`
	ActionType     string    `json:"action_type"`
	Summary        string    `json:"summary"`
	Channel        string    `json:"channel"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAction builds an unpersisted audit row for one executed tool call.
func NewAction(conversationID uint, userID, toolName, summary, channel string) *Action {
	return &Action{
		PublicID:       newPublicID("act"),
		ConversationID: conversationID,
		UserID:         userID,
		ActionType:     toolName,
		Summary:        summary,
		Channel:        channel,
	}
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
