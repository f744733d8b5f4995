package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/infrastructure/metrics"
	"homehub/assistant-api/internal/infrastructure/observability"
	"homehub/assistant-api/internal/interfaces/httpserver/dto"
	"homehub/assistant-api/internal/interfaces/httpserver/responses"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// TurnHandler exposes the synchronous web chat entrypoint.
type TurnHandler struct {
	service turn.Service
	log     zerolog.Logger
}

// NewTurnHandler constructs the handler.
func NewTurnHandler(service turn.Service, log zerolog.Logger) *TurnHandler {
	return &TurnHandler{
		service: service,
		log:     log.With().Str("handler", "turn").Logger(),
	}
}

// Create handles POST /v1/turns
// @Summary Run a conversation turn
// @Description Runs one complete turn against the assistant, including any tool rounds, and blocks until the final reply.
// @Tags Turns
// @Accept json
// @Produce json
// @Param request body dto.TurnRequest true "Turn request"
// @Success 200 {object} dto.TurnResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /v1/turns [post]
func (h *TurnHandler) Create(c *gin.Context) {
	var req dto.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body",
			"9e2c61d8-4b5f-40a7-8c3d-1f6a0b9e7d52")
		return
	}

	userID := requestUser(c)

	start := time.Now()
	ctx, span := observability.StartTurnSpan(c.Request.Context(), conversation.ChannelWeb)
	defer span.End()

	result, err := h.service.Run(ctx, turn.RunParams{
		ConversationPublicID: req.ConversationID,
		UserID:               userID,
		Channel:              conversation.ChannelWeb,
		Message:              req.Message,
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTurn(conversation.ChannelWeb, "unknown", "error", 0, time.Since(start).Seconds())
		responses.HandleError(c, err, "failed to run turn")
		return
	}

	outcome := "completed"
	if result.Degraded {
		outcome = "degraded"
		metrics.RecordRoundLimit()
	}
	metrics.RecordTurn(conversation.ChannelWeb, string(result.Tier), outcome, result.ToolRounds, time.Since(start).Seconds())
	metrics.RecordUsage(string(result.Tier), result.Usage.InputTokens, result.Usage.OutputTokens, result.CostCents.InexactFloat64())

	c.JSON(http.StatusOK, dto.FromTurnResult(result))
}
