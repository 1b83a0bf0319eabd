package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-catalog-api/internal/events"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub, conn := dialTestHub(t)

	// registration races the broadcast; give the hub a beat
	time.Sleep(50 * time.Millisecond)
	hub.Broadcast("product:created", map[string]string{"name": "Keyboard"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "product:created", msg.Event)
}

func TestBridgeForwardsKnownEvents(t *testing.T) {
	hub, conn := dialTestHub(t)
	time.Sleep(50 * time.Millisecond)

	b := &Bridge{Hub: hub}
	env := events.Envelope{
		EventID:   "e-1",
		EventType: events.EventOrderCreated,
		Payload:   json.RawMessage(`{"order":{"id":"o-1"}}`),
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, b.Handle(context.Background(), kafkago.Message{Value: raw}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(got, &msg))
	assert.Equal(t, "order:created", msg.Event)
}

func TestHubShutdownReleasesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	// connected client is released, read fails instead of hanging
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// a connection arriving after shutdown is turned away, not parked on
	// the dead register channel
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { late.Close() })
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}

func TestBridgeIgnoresUnknownAndPoison(t *testing.T) {
	hub := NewHub()
	b := &Bridge{Hub: hub}

	// both must be acknowledged so the offset advances
	assert.NoError(t, b.Handle(context.Background(), kafkago.Message{Value: []byte("not json")}))

	env := events.Envelope{EventType: "SomethingElse", Payload: json.RawMessage(`{}`)}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NoError(t, b.Handle(context.Background(), kafkago.Message{Value: raw}))

	// nothing queued for broadcast
	assert.Empty(t, hub.broadcast)
}
