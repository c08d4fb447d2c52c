package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-certify/certify-backend/internal/notifications"
)

func newTestServer(t *testing.T, origins []string) (*Manager, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := NewManager(origins, nil)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), m)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		m.Close()
		srv.Close()
	})
	return m, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesConnectedClients(t *testing.T) {
	m, url := newTestServer(t, nil)
	a := dial(t, url)
	b := dial(t, url)

	require.Eventually(t, func() bool { return m.GetConnectionCount() == 2 }, time.Second, 10*time.Millisecond)

	err := m.Publish(context.Background(), notifications.Event{
		Type:        notifications.EventRequestApproved,
		RequestID:   "7",
		StudentName: "Asha Rao",
		Status:      "Approved",
		Timestamp:   time.Now(),
	})
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg notifications.WebSocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, notifications.WSMessageTypeNotification, msg.Type)
		assert.Equal(t, notifications.EventRequestApproved, msg.Data["event"])
		assert.Equal(t, "7", msg.Data["requestId"])
	}
}

func TestPresenceGetsStatusReply(t *testing.T) {
	_, url := newTestServer(t, nil)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(notifications.WebSocketMessage{Type: notifications.WSMessageTypePresence}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg notifications.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, notifications.WSMessageTypeStatus, msg.Type)
	assert.Equal(t, "connected", msg.Data["status"])
	assert.NotEmpty(t, msg.Data["connection_id"])
}

func TestDisconnectUnregisters(t *testing.T) {
	m, url := newTestServer(t, nil)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return m.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return m.GetConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginCheck(t *testing.T) {
	_, url := newTestServer(t, []string{"https://portal.example"})

	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)

	header = map[string][]string{"Origin": {"https://portal.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}
