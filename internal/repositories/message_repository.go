package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/models"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a chat message
func (r *MessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	const query = `
	INSERT INTO messages (id, from_user_id, to_user_id, content, sent_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		message.ID,
		message.FromUserID,
		message.ToUserID,
		message.Content,
		message.SentAt,
	)
	return err
}

// ListConversation returns the most recent messages between two users,
// oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, userA, userB uuid.UUID, limit int) ([]models.ChatMessage, error) {
	const query = `
	SELECT id, from_user_id, to_user_id, content, sent_at
	FROM (
		SELECT id, from_user_id, to_user_id, content, sent_at
		FROM messages
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
		ORDER BY sent_at DESC
		LIMIT $3
	) recent
	ORDER BY sent_at
	`

	rows, err := r.db.QueryContext(ctx, query, userA, userB, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Content, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
