package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/utils"
)

type wsAuthKey struct{}

// WebSocketAuthContext holds the verified identity of a websocket
// connection, resolved before the upgrade happens.
type WebSocketAuthContext struct {
	UserID uuid.UUID
	Role   string
}

// WebSocketAuthMiddleware authenticates the websocket handshake. The
// credential arrives as a query parameter because browsers cannot set
// headers on websocket requests. Verification goes through the same
// ParseAccessToken path as the HTTP API; a bad credential aborts with
// 401 before the upgrade, so an unauthenticated connection is never
// registered, not even partially.
func WebSocketAuthMiddleware(jwtSecret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := utils.ParseAccessToken(token, jwtSecret)
		if err != nil {
			log.Warn().Err(err).Msg("websocket handshake rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		authCtx := &WebSocketAuthContext{
			UserID: claims.UserID,
			Role:   claims.Role,
		}

		ctx := context.WithValue(c.Request.Context(), wsAuthKey{}, authCtx)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetWebSocketAuth retrieves the handshake identity set by
// WebSocketAuthMiddleware.
func GetWebSocketAuth(c *gin.Context) (*WebSocketAuthContext, error) {
	val := c.Request.Context().Value(wsAuthKey{})
	if val == nil {
		return nil, errors.New("websocket authentication context not found")
	}

	auth, ok := val.(*WebSocketAuthContext)
	if !ok {
		return nil, errors.New("invalid websocket authentication context type")
	}

	return auth, nil
}
