package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayFanOutReachesEveryConnection(t *testing.T) {
	registry := newTestRegistry()
	relay := NewRelay(registry, zerolog.Nop())

	recipient := uuid.New()
	first := NewClient(recipient, "student", nil)
	second := NewClient(recipient, "student", nil)
	require.NoError(t, registry.Add(first))
	require.NoError(t, registry.Add(second))

	sender := uuid.New()
	sentAt := time.Now()
	delivered := relay.Push(sender, recipient, "hello", sentAt)
	assert.Equal(t, 2, delivered)

	for _, client := range []*Client{first, second} {
		select {
		case raw := <-client.Send:
			event, ok := raw.(MessageEvent)
			require.True(t, ok)
			assert.Equal(t, "message", event.Type)
			assert.Equal(t, sender, event.FromUserID)
			assert.Equal(t, recipient, event.ToUserID)
			assert.Equal(t, "hello", event.Content)
			assert.Equal(t, sentAt, event.Timestamp)
		default:
			t.Fatal("expected a queued event")
		}
	}
}

func TestRelayOfflineRecipientIsSilent(t *testing.T) {
	registry := newTestRegistry()
	relay := NewRelay(registry, zerolog.Nop())

	delivered := relay.Push(uuid.New(), uuid.New(), "hello", time.Now())
	assert.Equal(t, 0, delivered)
}

func TestRelaySkipsClosingClients(t *testing.T) {
	registry := newTestRegistry()
	relay := NewRelay(registry, zerolog.Nop())

	recipient := uuid.New()
	open := NewClient(recipient, "student", nil)
	closing := NewClient(recipient, "student", nil)
	require.NoError(t, registry.Add(open))
	require.NoError(t, registry.Add(closing))

	closing.Close()

	delivered := relay.Push(uuid.New(), recipient, "hello", time.Now())
	assert.Equal(t, 1, delivered)
}

func TestRelayDoesNotBlockOnFullBuffer(t *testing.T) {
	registry := newTestRegistry()
	relay := NewRelay(registry, zerolog.Nop())

	recipient := uuid.New()
	client := NewClient(recipient, "student", nil)
	require.NoError(t, registry.Add(client))

	for i := 0; i < cap(client.Send); i++ {
		require.True(t, client.TrySend(PongEvent{Type: "pong"}))
	}

	done := make(chan int, 1)
	go func() {
		done <- relay.Push(uuid.New(), recipient, "overflow", time.Now())
	}()

	select {
	case delivered := <-done:
		assert.Equal(t, 0, delivered)
	case <-time.After(time.Second):
		t.Fatal("relay push blocked on a full send buffer")
	}
}
