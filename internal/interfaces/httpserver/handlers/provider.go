package handlers

import (
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/domain/turn"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Turn         *TurnHandler
	Conversation *ConversationHandler
	Slack        *SlackHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	turns turn.Service,
	sessions conversation.Service,
	identities *identity.Resolver,
	queue job.Queue,
	slackSigningSecret string,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Turn:         NewTurnHandler(turns, log),
		Conversation: NewConversationHandler(sessions, log),
		Slack:        NewSlackHandler(identities, queue, slackSigningSecret, log),
	}
}
