package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/pkg/jwt"
	"github.com/qs3c/kidcare_server/internal/pkg/pubsub"
	"github.com/qs3c/kidcare_server/internal/pkg/ws"
)

const testWSSecret = "test-secret-key-for-websocket"

func websocketServer(t *testing.T, h *WebSocketHandler) string {
	t.Helper()
	r := gin.New()
	r.GET("/ws", h.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWebSocketHandler_RejectsBadToken(t *testing.T) {
	h := NewWebSocketHandler(ws.NewHub(), testWSSecret, nil)
	r := gin.New()
	r.GET("/ws", h.Handle)

	for _, path := range []string{"/ws", "/ws?token=garbage"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestWebSocketHandler_DeliversStatus(t *testing.T) {
	hub := ws.NewHub()
	h := NewWebSocketHandler(hub, testWSSecret, nil)
	url := websocketServer(t, h)

	token, err := jwt.GenerateToken(7, testWSSecret, 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, 2*time.Second, 10*time.Millisecond)

	err = h.PublishStatus(context.Background(), &pubsub.StatusMessage{
		UserID:           7,
		SubscriptionCode: "SUB-260309140507-ABC123",
		Step:             pubsub.StepDone,
	})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string               `json:"type"`
		Data pubsub.StatusMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "notification_status", msg.Type)
	assert.Equal(t, "SUB-260309140507-ABC123", msg.Data.SubscriptionCode)
	assert.Equal(t, 100, msg.Data.Progress)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(7) }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(ws.NewHub(), testWSSecret, []string{"https://kidcare.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, h.checkOrigin(req))

	req.Header.Set("Origin", "https://kidcare.example.com")
	assert.True(t, h.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, h.checkOrigin(req))
}
