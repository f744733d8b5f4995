package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/turn"
)

// TokensPayload breaks a turn's token usage down per direction.
type TokensPayload struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// TurnResponse is returned by POST /v1/turns.
type TurnResponse struct {
	ResponseText   string          `json:"response_text"`
	ConversationID string          `json:"conversation_id"`
	ModelTier      string          `json:"model_tier"`
	Tokens         TokensPayload   `json:"tokens"`
	CostCents      decimal.Decimal `json:"cost_cents" swaggertype:"number"`
	ToolRounds     int             `json:"tool_rounds"`
}

// FromTurnResult maps a completed turn to the HTTP payload.
func FromTurnResult(r *turn.Result) TurnResponse {
	return TurnResponse{
		ResponseText:   r.ResponseText,
		ConversationID: r.ConversationPublicID,
		ModelTier:      string(r.Tier),
		Tokens: TokensPayload{
			Input:  r.Usage.InputTokens,
			Output: r.Usage.OutputTokens,
			Total:  r.Usage.InputTokens + r.Usage.OutputTokens,
		},
		CostCents:  r.CostCents,
		ToolRounds: r.ToolRounds,
	}
}

// ConversationPayload is one conversation in list responses.
type ConversationPayload struct {
	ID            string    `json:"id"`
	Channel       string    `json:"channel"`
	Summary       string    `json:"summary,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ConversationListPayload wraps GET /v1/conversations output.
type ConversationListPayload struct {
	Data []ConversationPayload `json:"data"`
}

// FromConversations maps domain conversations to the list payload.
func FromConversations(convs []conversation.Conversation) ConversationListPayload {
	data := make([]ConversationPayload, 0, len(convs))
	for _, c := range convs {
		data = append(data, ConversationPayload{
			ID:            c.PublicID,
			Channel:       c.Channel,
			Summary:       c.Summary,
			StartedAt:     c.StartedAt,
			LastMessageAt: c.LastMessageAt,
		})
	}
	return ConversationListPayload{Data: data}
}

// ToolCallPayload is one tool request carried by an assistant message.
type ToolCallPayload struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// MessagePayload is one message in conversation history responses.
type MessagePayload struct {
	ID           string            `json:"id"`
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	ToolCalls    []ToolCallPayload `json:"tool_calls,omitempty"`
	InputTokens  int               `json:"input_tokens,omitempty"`
	OutputTokens int               `json:"output_tokens,omitempty"`
	ModelTier    string            `json:"model_tier,omitempty"`
	CostCents    decimal.Decimal   `json:"cost_cents" swaggertype:"number"`
	Sequence     int               `json:"sequence"`
	CreatedAt    time.Time         `json:"created_at"`
}

// MessageListPayload wraps GET /v1/conversations/:conv_id/messages output.
type MessageListPayload struct {
	ConversationID string           `json:"conversation_id"`
	Data           []MessagePayload `json:"data"`
}

// FromMessages maps ordered domain messages to the list payload.
func FromMessages(conversationPublicID string, msgs []conversation.Message) MessageListPayload {
	data := make([]MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		data = append(data, MessagePayload{
			ID:           m.PublicID,
			Role:         m.Role,
			Content:      m.Content,
			ToolCalls:    fromToolCalls(m.ToolCalls),
			InputTokens:  m.InputTokens,
			OutputTokens: m.OutputTokens,
			ModelTier:    m.ModelTier,
			CostCents:    m.CostCents,
			Sequence:     m.Sequence,
			CreatedAt:    m.CreatedAt,
		})
	}
	return MessageListPayload{ConversationID: conversationPublicID, Data: data}
}

func fromToolCalls(calls []conversation.ToolCall) []ToolCallPayload {
	if len(calls) == 0 {
		return nil
	}
	payload := make([]ToolCallPayload, 0, len(calls))
	for _, call := range calls {
		payload = append(payload, ToolCallPayload{
			ID:    call.ID,
			Name:  call.Name,
			Input: call.Input,
		})
	}
	return payload
}

// ActionPayload is one executed tool call in audit responses.
type ActionPayload struct {
	ID         string    `json:"id"`
	ActionType string    `json:"action_type"`
	Summary    string    `json:"summary"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActionListPayload wraps GET /v1/conversations/:conv_id/actions output.
type ActionListPayload struct {
	ConversationID string          `json:"conversation_id"`
	Data           []ActionPayload `json:"data"`
}

// FromActions maps domain audit rows to the list payload.
func FromActions(conversationPublicID string, actions []conversation.Action) ActionListPayload {
	data := make([]ActionPayload, 0, len(actions))
	for _, a := range actions {
		data = append(data, ActionPayload{
			ID:         a.PublicID,
			ActionType: a.ActionType,
			Summary:    a.Summary,
			Channel:    a.Channel,
			CreatedAt:  a.CreatedAt,
		})
	}
	return ActionListPayload{ConversationID: conversationPublicID, Data: data}
}
