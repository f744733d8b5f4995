package v1

import (
	"github.com/gin-gonic/gin"

	"homehub/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.GET("/conversations", handler.List)
	router.GET("/conversations/:conv_id/messages", handler.ListMessages)
	router.GET("/conversations/:conv_id/actions", handler.ListActions)
}
