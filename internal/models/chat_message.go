package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the stored form of a relayed chat event. Storage is
// independent of delivery: a message is persisted whether or not the
// recipient had a live connection when it was sent.
type ChatMessage struct {
	ID         uuid.UUID `db:"id"`
	FromUserID uuid.UUID `db:"from_user_id"`
	ToUserID   uuid.UUID `db:"to_user_id"`
	Content    string    `db:"content"`
	SentAt     time.Time `db:"sent_at"`
}
