package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/infrastructure/auth"
	"homehub/assistant-api/internal/interfaces/httpserver/dto"
	"homehub/assistant-api/internal/interfaces/httpserver/responses"
)

// ConversationHandler exposes read access to a user's dialogue history.
type ConversationHandler struct {
	sessions conversation.Service
	log      zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(sessions conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		sessions: sessions,
		log:      log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /v1/conversations
// @Summary List conversations
// @Description Lists the requesting user's conversations, most recent first.
// @Tags Conversations
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ConversationListPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID := requestUser(c)

	var pagination conversation.Pagination
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			pagination.Page = page
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			pagination.PageSize = limit
		}
	}
	if pagination.Page > 0 && pagination.PageSize == 0 {
		pagination.PageSize = 20
	}

	convs, err := h.sessions.ListConversations(c.Request.Context(), userID, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, dto.FromConversations(convs))
}

// ListMessages handles GET /v1/conversations/:conv_id/messages
// @Summary List conversation messages
// @Description Returns the ordered message history of a conversation the requesting user owns.
// @Tags Conversations
// @Produce json
// @Param conv_id path string true "Conversation ID"
// @Success 200 {object} dto.MessageListPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conv_id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	msgs, err := h.sessions.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, dto.FromMessages(conv.PublicID, msgs))
}

// ListActions handles GET /v1/conversations/:conv_id/actions
// @Summary List executed actions
// @Description Returns the audit trail of tool calls executed in a conversation the requesting user owns.
// @Tags Conversations
// @Produce json
// @Param conv_id path string true "Conversation ID"
// @Success 200 {object} dto.ActionListPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conv_id}/actions [get]
func (h *ConversationHandler) ListActions(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	actions, err := h.sessions.ListActions(c.Request.Context(), conv.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list actions")
		return
	}

	c.JSON(http.StatusOK, dto.FromActions(conv.PublicID, actions))
}

// ownedConversation loads the path conversation, enforcing ownership. A
// mismatch reads as absence.
func (h *ConversationHandler) ownedConversation(c *gin.Context) (*conversation.Conversation, bool) {
	conv, err := h.sessions.GetOwned(c.Request.Context(), c.Param("conv_id"), requestUser(c))
	if err != nil {
		responses.HandleError(c, err, "conversation not found")
		return nil, false
	}
	return conv, true
}

func requestUser(c *gin.Context) string {
	if sub := auth.SubjectFromContext(c); sub != "" {
		return sub
	}
	return "guest"
}
