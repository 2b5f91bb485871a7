package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live, authenticated websocket connection. A user with
// several devices or tabs open has one Client per connection, all
// registered under the same UserID.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Role   string

	Conn *websocket.Conn
	Send chan interface{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID uuid.UUID, role string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan interface{}, 256),
		done:   make(chan struct{}),
	}
}

// Close shuts the connection down. Safe to call from any goroutine, any
// number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// Done is closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// TrySend queues a message without blocking. Returns false if the client
// is closing or its buffer is full; the message is dropped either way.
func (c *Client) TrySend(message interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}
