package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/dtos"
	"github.com/Shivesh4/MindPath/internal/middlewares"
	"github.com/Shivesh4/MindPath/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// History handles GET /messages/:contactId
func (h *ChatHandler) History(c *gin.Context) {
	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	callerID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), callerID, contactID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dtos.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dtos.MessageResponse{
			ID:         m.ID,
			FromUserID: m.FromUserID,
			ToUserID:   m.ToUserID,
			Content:    m.Content,
			SentAt:     m.SentAt,
		})
	}

	c.JSON(http.StatusOK, out)
}
