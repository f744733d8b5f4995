package routes

import (
	"github.com/gin-gonic/gin"

	"homehub/assistant-api/internal/interfaces/httpserver/handlers"
	v1 "homehub/assistant-api/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
	V1       *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		handlers: handlerProvider,
		V1:       v1.NewRoutes(handlerProvider),
	}
}

// RegisterPublic attaches routes that bypass bearer auth. Inbound platform
// webhooks authenticate with their own signature scheme instead.
func (p *Provider) RegisterPublic(engine *gin.Engine) {
	engine.POST("/webhooks/slack/commands", p.handlers.Slack.HandleCommand)
}

// Register attaches all authenticated routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine)
}
