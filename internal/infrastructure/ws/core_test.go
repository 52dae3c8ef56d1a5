package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

type frame struct {
	Type         string                 `json:"type"`
	Conversation domain.ConversationKey `json:"conversation"`
	Data         map[string]any         `json:"data"`
}

func startCore(t *testing.T) *Core {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	core := NewCore(logging.NewNopLogger(), 16)
	go core.Run(ctx)
	return core
}

func subscribe(t *testing.T, core *Core, key domain.ConversationKey) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cl := NewClient(conn, "u1", key, 8)
		if !core.Register(cl) {
			_ = conn.Close()
			return
		}
		go cl.WriteMessage()
		cl.ReadMessage(core)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var ack frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, SubscribedEvent, ack.Type)
	require.Equal(t, key, ack.Conversation)
	return conn
}

func TestSubscriberReceivesOnlyItsConversation(t *testing.T) {
	core := startCore(t)
	conn := subscribe(t, core, domain.RoomKey("general"))

	core.Notify(domain.ConversationEvent{Type: domain.MessageCreated, Key: domain.RoomKey("other"), Payload: domain.Message{ID: "x"}})
	core.Notify(domain.ConversationEvent{Type: domain.MessageCreated, Key: domain.RoomKey("general"), Payload: domain.Message{ID: "m1", Content: "hello"}})

	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, MessageCreatedEvent, got.Type)
	assert.Equal(t, "m1", got.Data["id"])
	assert.Equal(t, "hello", got.Data["content"])
}

func TestEventsArriveInNotifyOrder(t *testing.T) {
	core := startCore(t)
	key := domain.DirectKey("a", "b")
	conn := subscribe(t, core, key)

	for _, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		core.Notify(domain.ConversationEvent{Type: domain.MessageCreated, Key: key, Payload: domain.Message{ID: id}})
	}

	for _, want := range []string{"m1", "m2", "m3", "m4", "m5"} {
		var got frame
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, want, got.Data["id"])
	}
}

func TestUnsubscribeOnDisconnect(t *testing.T) {
	core := startCore(t)
	key := domain.RoomKey("general")
	conn := subscribe(t, core, key)

	assert.Equal(t, 1, core.Subscribers(key))
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return core.Subscribers(key) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyNeverBlocks(t *testing.T) {
	core := NewCore(logging.NewNopLogger(), 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			core.Notify(domain.ConversationEvent{Type: domain.MessageCreated, Key: "general"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked without a running core")
	}
	assert.Equal(t, uint64(3), core.Dropped())
}

func TestRegisterAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	core := NewCore(logging.NewNopLogger(), 1)
	stopped := make(chan struct{})
	go func() {
		core.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, core.Register(&Client{Message: make(chan *WSMessage, 1)}))
}
