package v1

import (
	"github.com/gin-gonic/gin"

	"homehub/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerTurnRoutes(router gin.IRoutes, handler *handlers.TurnHandler) {
	router.POST("/turns", handler.Create)
}
