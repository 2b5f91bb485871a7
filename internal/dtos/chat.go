package dtos

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Websocket frames do not pass through gin binding, so they get their own
// validator instance.
var validate = validator.New()

// Inbound websocket frame. The sender identity is never read from the
// frame; it comes from the authenticated connection.
type ChatFrame struct {
	Type      string `json:"type" validate:"required,oneof=message ping"`
	ContactID string `json:"contact_id" validate:"required_if=Type message,omitempty,uuid"`
	Content   string `json:"content" validate:"required_if=Type message,max=4000"`
}

func (f *ChatFrame) Validate() error {
	return validate.Struct(f)
}

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}
