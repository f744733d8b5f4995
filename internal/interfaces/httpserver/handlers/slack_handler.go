package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/infrastructure/metrics"
	"homehub/assistant-api/internal/interfaces/httpserver/responses"
	"homehub/assistant-api/internal/utils/platformerrors"
	"homehub/assistant-api/internal/webhook"
)

// signatureTolerance bounds how old a signed request may be before it is
// rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

// User-facing ack texts. Slack renders these verbatim.
const (
	ackWorking   = "Working on it. I will post the result here shortly."
	ackNotLinked = "Your Slack account is not linked yet. Link it from the web app settings first."
)

// SlackHandler accepts inbound slash commands and defers them to the queue.
// The route is public; the signing secret authenticates each request.
type SlackHandler struct {
	identities    *identity.Resolver
	queue         job.Queue
	signingSecret string
	log           zerolog.Logger
}

// NewSlackHandler constructs the handler. An empty signing secret disables
// signature verification; only do that in local development.
func NewSlackHandler(identities *identity.Resolver, queue job.Queue, signingSecret string, log zerolog.Logger) *SlackHandler {
	return &SlackHandler{
		identities:    identities,
		queue:         queue,
		signingSecret: signingSecret,
		log:           log.With().Str("handler", "slack").Logger(),
	}
}

// HandleCommand handles POST /webhooks/slack/commands
// @Summary Accept a Slack slash command
// @Description Verifies the request signature, enqueues a deferred turn and acks immediately. The result is delivered later via the response_url.
// @Tags Webhooks
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} webhook.SlackMessage
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /webhooks/slack/commands [post]
func (h *SlackHandler) HandleCommand(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unreadable request body",
			"5d7f2a91-3c84-4b6e-a0f5-8e1b9c4d2a67")
		return
	}

	if h.signingSecret != "" {
		if !h.verifySignature(c, body) {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "invalid request signature",
				"b4e8c2f6-1a59-4d37-9c0b-6f3e8a5d1b94")
			return
		}
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "malformed form payload",
			"8a3d6f12-9b7e-4c05-b2a8-4e1f7c9d3b56")
		return
	}

	platformUserID := values.Get("user_id")
	responseURL := values.Get("response_url")
	if platformUserID == "" || responseURL == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "missing user_id or response_url",
			"2f9b4e77-6d18-4a53-8c2e-b5a0d3f16c89")
		return
	}

	userID, err := h.identities.Resolve(c.Request.Context(), identity.PlatformSlack, platformUserID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			h.log.Info().Str("platform_user_id", platformUserID).Msg("unlinked slack identity")
			c.JSON(http.StatusOK, webhook.SlackMessage{
				ResponseType: webhook.ResponseTypeEphemeral,
				Text:         ackNotLinked,
			})
			return
		}
		responses.HandleError(c, err, "failed to resolve identity")
		return
	}

	instruction := instructionForCommand(values.Get("command"), values.Get("text"))

	j := job.NewTurnJob(userID, conversation.ChannelSlack, instruction, responseURL)
	if err := h.queue.Enqueue(c.Request.Context(), j); err != nil {
		responses.HandleError(c, err, "failed to enqueue turn")
		return
	}
	metrics.RecordBackgroundJob("deferred_turn", "enqueued")

	h.log.Info().
		Str("job_id", j.PublicID).
		Str("user_id", userID).
		Str("command", values.Get("command")).
		Msg("slash command enqueued")

	c.JSON(http.StatusOK, webhook.SlackMessage{
		ResponseType: webhook.ResponseTypeEphemeral,
		Text:         ackWorking,
	})
}

// verifySignature checks the v0 HMAC-SHA256 signature over the raw body
// against X-Slack-Signature, rejecting stale timestamps.
func (h *SlackHandler) verifySignature(c *gin.Context, body []byte) bool {
	timestamp := c.GetHeader("X-Slack-Request-Timestamp")
	signature := c.GetHeader("X-Slack-Signature")
	if timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if age := time.Since(time.Unix(ts, 0)); age > signatureTolerance || age < -signatureTolerance {
		h.log.Warn().Str("timestamp", timestamp).Msg("stale webhook timestamp")
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// subjects maps a slash command verb to the assistant-facing topic noun.
var subjects = map[string]string{
	"task":     "my tasks",
	"tasks":    "my tasks",
	"habit":    "my habits",
	"habits":   "my habits",
	"goal":     "my goals",
	"goals":    "my goals",
	"budget":   "my budget",
	"shopping": "my shopping list",
}

// instructionForCommand turns a slash command and its free-text argument
// into one natural-language instruction for the assistant.
func instructionForCommand(command, text string) string {
	verb := strings.TrimPrefix(strings.TrimSpace(command), "/")
	text = strings.TrimSpace(text)

	subject, known := subjects[verb]
	switch {
	case !known:
		// /assistant and unrecognized commands carry the text verbatim.
		if text == "" {
			return "Give me a quick overview of my day."
		}
		return text
	case text == "":
		return fmt.Sprintf("Give me an overview of %s.", subject)
	default:
		return fmt.Sprintf("For %s: %s", subject, text)
	}
}
