package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/dtos"
	"github.com/Shivesh4/MindPath/internal/middlewares"
	"github.com/Shivesh4/MindPath/internal/services"
	ws "github.com/Shivesh4/MindPath/internal/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS layer in front
	},
}

type WebSocketHandler struct {
	chatService *services.ChatService
	registry    *ws.Registry
	log         zerolog.Logger
}

func NewWebSocketHandler(chatService *services.ChatService, registry *ws.Registry, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		chatService: chatService,
		registry:    registry,
		log:         log,
	}
}

// HandleWebSocket is the chat connection endpoint.
// MUST be protected by WebSocketAuthMiddleware.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	auth, err := middlewares.GetWebSocketAuth(c)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket handler reached without auth context")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(auth.UserID, auth.Role, conn)

	if err := h.registry.Add(client); err != nil {
		// Server is shutting down; refuse cleanly.
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait),
		)
		client.Close()
		return
	}

	h.log.Info().
		Stringer("user_id", client.UserID).
		Stringer("conn_id", client.ID).
		Str("role", client.Role).
		Msg("websocket connected")

	go h.readPump(client)
	go h.writePump(client)
}

// readPump consumes inbound frames until the connection dies, then
// unregisters the client. Unregistration is idempotent, so an abrupt
// close and a clean close converge on the same cleanup.
func (h *WebSocketHandler) readPump(client *ws.Client) {
	defer func() {
		h.registry.Remove(client)
		client.Close()
		h.log.Info().
			Stringer("user_id", client.UserID).
			Stringer("conn_id", client.ID).
			Msg("websocket disconnected")
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame dtos.ChatFrame
		if err := client.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Stringer("user_id", client.UserID).Msg("websocket read error")
			}
			return
		}

		if err := frame.Validate(); err != nil {
			client.TrySend(ws.ErrorEvent{Type: "error", Reason: "malformed frame"})
			continue
		}

		switch frame.Type {
		case "message":
			h.handleMessageFrame(client, &frame)

		case "ping":
			client.TrySend(ws.PongEvent{Type: "pong"})
		}
	}
}

func (h *WebSocketHandler) handleMessageFrame(client *ws.Client, frame *dtos.ChatFrame) {
	contactID, err := uuid.Parse(frame.ContactID)
	if err != nil {
		client.TrySend(ws.ErrorEvent{Type: "error", Reason: "invalid contact id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Sender identity comes from the authenticated connection, never
	// from the frame.
	if _, err := h.chatService.Send(ctx, client.UserID, contactID, frame.Content); err != nil {
		h.log.Warn().Err(err).Stringer("user_id", client.UserID).Msg("message not accepted")
		client.TrySend(ws.ErrorEvent{Type: "error", Reason: err.Error()})
	}
}

// writePump drains the client's send queue and keeps the connection
// alive with protocol pings.
func (h *WebSocketHandler) writePump(client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case message := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Done():
			return
		}
	}
}
