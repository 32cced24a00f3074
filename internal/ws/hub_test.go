package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(hub.Handler())
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(message, &decoded))
	return decoded
}

func TestHub_GreetsNewClient(t *testing.T) {
	_, server := newHubServer(t)

	conn := dial(t, server)
	greeting := readEnvelope(t, conn)

	assert.Equal(t, "connection", greeting["type"])
	assert.Equal(t, "Connected to estimation server", greeting["message"])
}

func TestHub_RebroadcastsClientMessages(t *testing.T) {
	_, server := newHubServer(t)

	sender := dial(t, server)
	receiver := dial(t, server)
	readEnvelope(t, sender)
	readEnvelope(t, receiver)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"action":"voted","taskId":"task-1"}`)))

	got := readEnvelope(t, receiver)
	assert.Equal(t, "update", got["type"])

	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "voted", data["action"])
	assert.Equal(t, "task-1", data["taskId"])

	// The sender hears its own message too.
	echo := readEnvelope(t, sender)
	assert.Equal(t, "update", echo["type"])
}

func TestHub_DropsMalformedMessages(t *testing.T) {
	_, server := newHubServer(t)

	sender := dial(t, server)
	receiver := dial(t, server)
	readEnvelope(t, sender)
	readEnvelope(t, receiver)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"ok":true}`)))

	// Only the valid message comes through.
	got := readEnvelope(t, receiver)
	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["ok"])
}

func TestHub_PublishWrapsServerEvents(t *testing.T) {
	hub, server := newHubServer(t)

	conn := dial(t, server)
	readEnvelope(t, conn)

	hub.Publish("finalize", map[string]string{"taskId": "task-1"})

	got := readEnvelope(t, conn)
	assert.Equal(t, "update", got["type"])

	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "finalize", data["event"])

	payload, ok := data["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "task-1", payload["taskId"])
}

func TestHub_DisconnectedClientIsRemoved(t *testing.T) {
	hub, server := newHubServer(t)

	stayer := dial(t, server)
	leaver := dial(t, server)
	readEnvelope(t, stayer)
	readEnvelope(t, leaver)

	require.NoError(t, leaver.Close())

	// Broadcasts keep flowing to the remaining client after the other leaves.
	hub.Publish("ping", nil)
	got := readEnvelope(t, stayer)
	assert.Equal(t, "update", got["type"])
}
