package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Relay pushes a chat event to every live connection of the recipient.
//
// Delivery is best-effort and fire-and-forget: an offline recipient, a
// closing connection, or a full send buffer all drop the event silently.
// Nothing is queued, retried, or persisted here; durable storage happens
// upstream, before the relay is asked to push.
type Relay struct {
	registry *Registry
	log      zerolog.Logger
}

func NewRelay(registry *Registry, log zerolog.Logger) *Relay {
	return &Relay{registry: registry, log: log}
}

// Push fans the event out to all of the recipient's connections and
// returns the number of handles it reached. Zero is a normal outcome,
// not an error.
func (r *Relay) Push(fromUserID, toUserID uuid.UUID, content string, at time.Time) int {
	event := MessageEvent{
		Type:       "message",
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Content:    content,
		Timestamp:  at,
	}

	delivered := 0
	for _, client := range r.registry.Clients(toUserID) {
		if client.TrySend(event) {
			delivered++
		}
	}

	if delivered == 0 {
		r.log.Debug().
			Stringer("to_user_id", toUserID).
			Msg("recipient offline, event dropped")
	}

	return delivered
}
