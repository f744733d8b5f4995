package dto

// TurnRequest models POST /v1/turns input. ConversationID may be omitted to
// start a new conversation on the web channel.
type TurnRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message" binding:"required"`
}
