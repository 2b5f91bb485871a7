package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
)

const conversationPageSize = 100

// MessageStore persists chat messages.
type MessageStore interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListConversation(ctx context.Context, userA, userB uuid.UUID, limit int) ([]models.ChatMessage, error)
}

// EventPusher is the live-delivery side of chat. The websocket relay
// implements it; a durable queue could be swapped in without touching
// anything else in this package.
type EventPusher interface {
	Push(fromUserID, toUserID uuid.UUID, content string, at time.Time) int
}

// ChatService stores a message, then hands it to the relay. Storage and
// delivery are independent: the message is persisted whether or not the
// recipient is online, and a failed push is not an error.
type ChatService struct {
	store MessageStore
	relay EventPusher
	log   zerolog.Logger
}

func NewChatService(store MessageStore, relay EventPusher, log zerolog.Logger) *ChatService {
	return &ChatService{store: store, relay: relay, log: log}
}

// Send persists the message under the verified sender identity and fans
// it out to the recipient's live connections.
func (s *ChatService) Send(ctx context.Context, fromUserID, toUserID uuid.UUID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidation("message content is empty")
	}
	if fromUserID == toUserID {
		return nil, apperrors.NewValidation("cannot message yourself")
	}

	message := &models.ChatMessage{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Content:    content,
		SentAt:     time.Now().UTC(),
	}

	if err := s.store.Create(ctx, message); err != nil {
		return nil, err
	}

	delivered := s.relay.Push(message.FromUserID, message.ToUserID, message.Content, message.SentAt)

	s.log.Debug().
		Stringer("from", fromUserID).
		Stringer("to", toUserID).
		Int("delivered", delivered).
		Msg("message relayed")

	return message, nil
}

// History returns the recent conversation between the caller and a contact.
func (s *ChatService) History(ctx context.Context, callerID, contactID uuid.UUID) ([]models.ChatMessage, error) {
	return s.store.ListConversation(ctx, callerID, contactID, conversationPageSize)
}
