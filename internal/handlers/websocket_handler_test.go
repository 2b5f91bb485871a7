package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivesh4/MindPath/internal/middlewares"
	"github.com/Shivesh4/MindPath/internal/models"
	"github.com/Shivesh4/MindPath/internal/services"
	"github.com/Shivesh4/MindPath/internal/utils"
	ws "github.com/Shivesh4/MindPath/internal/websocket"
)

const wsTestSecret = "ws-test-secret"

type memMessageStore struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func (f *memMessageStore) Create(_ context.Context, message *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *memMessageStore) ListConversation(_ context.Context, _, _ uuid.UUID, _ int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatMessage(nil), f.messages...), nil
}

func (f *memMessageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type wsTestEnv struct {
	server   *httptest.Server
	registry *ws.Registry
	store    *memMessageStore
}

func newWSTestEnv(t *testing.T) *wsTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	registry := ws.NewRegistry(log)
	relay := ws.NewRelay(registry, log)
	store := &memMessageStore{}
	chatService := services.NewChatService(store, relay, log)
	handler := NewWebSocketHandler(chatService, registry, log)

	router := gin.New()
	router.GET("/api/ws/chat", middlewares.WebSocketAuthMiddleware(wsTestSecret, log), handler.HandleWebSocket)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		registry.Shutdown()
		server.Close()
	})

	return &wsTestEnv{server: server, registry: registry, store: store}
}

func (env *wsTestEnv) dial(t *testing.T, userID uuid.UUID, role string) *websocket.Conn {
	t.Helper()

	token, err := utils.GenerateAccessToken(userID, role, wsTestSecret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ws/chat?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type receivedFrame struct {
	Type       string    `json:"type"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Reason     string    `json:"reason"`
}

func TestWebSocketHandshakeRejectsBadToken(t *testing.T) {
	env := newWSTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ws/chat?token=bogus"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	// The refusal is an HTTP status, not a websocket close frame, so an
	// unauthenticated client is never registered at all.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, env.registry.UserCount())
}

func TestWebSocketHandshakeRequiresToken(t *testing.T) {
	env := newWSTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketRelayFansOutToAllRecipientConnections(t *testing.T) {
	env := newWSTestEnv(t)

	sender := uuid.New()
	recipient := uuid.New()

	senderConn := env.dial(t, sender, utils.RoleStudent)
	firstRecipient := env.dial(t, recipient, utils.RoleTutor)
	secondRecipient := env.dial(t, recipient, utils.RoleTutor)

	require.Eventually(t, func() bool {
		return env.registry.ConnectionCount(recipient) == 2
	}, 2*time.Second, 10*time.Millisecond)

	err := senderConn.WriteJSON(map[string]string{
		"type":       "message",
		"contact_id": recipient.String(),
		"content":    "see you at 4pm",
	})
	require.NoError(t, err)

	var frames []receivedFrame
	for _, conn := range []*websocket.Conn{firstRecipient, secondRecipient} {
		var frame receivedFrame
		require.NoError(t, conn.ReadJSON(&frame))
		frames = append(frames, frame)
	}

	for _, frame := range frames {
		assert.Equal(t, "message", frame.Type)
		assert.Equal(t, sender, frame.FromUserID)
		assert.Equal(t, recipient, frame.ToUserID)
		assert.Equal(t, "see you at 4pm", frame.Content)
	}

	// Both copies carry the same timestamp: one event, two handles.
	assert.Equal(t, frames[0].Timestamp, frames[1].Timestamp)
	assert.Equal(t, 1, env.store.count())
}

func TestWebSocketSenderIdentityComesFromToken(t *testing.T) {
	env := newWSTestEnv(t)

	sender := uuid.New()
	recipient := uuid.New()

	senderConn := env.dial(t, sender, utils.RoleStudent)
	recipientConn := env.dial(t, recipient, utils.RoleStudent)

	require.Eventually(t, func() bool {
		return env.registry.ConnectionCount(recipient) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The frame has no sender field to spoof; whatever extra fields a
	// client smuggles in are ignored.
	err := senderConn.WriteJSON(map[string]string{
		"type":         "message",
		"contact_id":   recipient.String(),
		"content":      "hi",
		"from_user_id": uuid.New().String(),
	})
	require.NoError(t, err)

	var frame receivedFrame
	require.NoError(t, recipientConn.ReadJSON(&frame))
	assert.Equal(t, sender, frame.FromUserID)
}

func TestWebSocketOfflineRecipientStillStores(t *testing.T) {
	env := newWSTestEnv(t)

	sender := uuid.New()
	senderConn := env.dial(t, sender, utils.RoleStudent)

	err := senderConn.WriteJSON(map[string]string{
		"type":       "message",
		"contact_id": uuid.New().String(),
		"content":    "anyone there?",
	})
	require.NoError(t, err)

	// Delivery silently drops, storage still happens.
	require.Eventually(t, func() bool {
		return env.store.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The connection survives; ping still answers.
	require.NoError(t, senderConn.WriteJSON(map[string]string{"type": "ping"}))
	var frame receivedFrame
	require.NoError(t, senderConn.ReadJSON(&frame))
	assert.Equal(t, "pong", frame.Type)
}

func TestWebSocketMalformedFrameGetsError(t *testing.T) {
	env := newWSTestEnv(t)

	conn := env.dial(t, uuid.New(), utils.RoleStudent)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message"}))

	var frame receivedFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, 0, env.store.count())
}

func TestWebSocketRegistryCleanupOnDisconnect(t *testing.T) {
	env := newWSTestEnv(t)

	userID := uuid.New()
	conn := env.dial(t, userID, utils.RoleStudent)

	require.Eventually(t, func() bool {
		return env.registry.ConnectionCount(userID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return env.registry.UserCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
