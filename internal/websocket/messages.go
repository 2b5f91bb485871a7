package websocket

import (
	"time"

	"github.com/google/uuid"
)

// MessageEvent is the outbound chat frame pushed to recipients. The
// sender identity is always the verified connection identity, never a
// client-supplied field.
type MessageEvent struct {
	Type       string    `json:"type"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// PongEvent answers an application-level ping frame.
type PongEvent struct {
	Type string `json:"type"`
}

// ErrorEvent tells a connected client its last frame was rejected.
type ErrorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
