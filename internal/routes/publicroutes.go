package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/handlers"
	"github.com/Shivesh4/MindPath/internal/middlewares"
)

func RegisterPublicEndpoints(
	router *gin.Engine,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
	log zerolog.Logger,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api")

	// The websocket endpoint authenticates via its own middleware: the
	// credential is verified before the upgrade, so a bad token gets a
	// plain 401 handshake refusal instead of a close frame.
	wsAuth := middlewares.WebSocketAuthMiddleware(jwtSecret, log)
	public.GET("/ws/chat", wsAuth, webSocketHandler.HandleWebSocket)
}
