package security

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wastetrack/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type staticAttempts struct {
	attempts []domain.LoginAttempt
}

func (s *staticAttempts) ListRecent(_ context.Context, _, _ int) ([]domain.LoginAttempt, error) {
	return s.attempts, nil
}

// wsTestServer wires the stream handler onto a bare router; the auth and
// permission guards are exercised in the middleware package tests.
func wsTestServer(t *testing.T, h *Handler) (*httptest.Server, string) {
	t.Helper()
	r := gin.New()
	r.GET("/ws", h.StreamEvents)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamEvents_BroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub()
	_, url := wsTestServer(t, NewHandler(hub, &staticAttempts{}))

	first := dial(t, url)
	second := dial(t, url)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	NewNotifier(hub).AccountLocked("victim@b1.example", "192.0.2.7")

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var evt Event
		require.NoError(t, conn.ReadJSON(&evt))
		assert.Equal(t, EventAccountLocked, evt.Type)
		assert.Equal(t, "victim@b1.example", evt.Username)
		assert.Equal(t, "192.0.2.7", evt.ClientAddr)
		assert.False(t, evt.At.IsZero())
	}
}

func TestStreamEvents_DisconnectDropsClient(t *testing.T) {
	hub := NewHub()
	_, url := wsTestServer(t, NewHandler(hub, &staticAttempts{}))

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)

	// broadcasting into an empty hub is a no-op, not a panic
	hub.Broadcast(Event{Type: EventRateLimited})
}

func TestNotifier_EventShapes(t *testing.T) {
	hub := NewHub()
	_, url := wsTestServer(t, NewHandler(hub, &staticAttempts{}))
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	n := NewNotifier(hub)
	n.RefreshReuse(42, "sess-1")
	n.RateLimited("ip:192.0.2.9", "login")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var reuse Event
	require.NoError(t, conn.ReadJSON(&reuse))
	assert.Equal(t, EventRefreshReuse, reuse.Type)
	assert.Equal(t, int64(42), reuse.UserID)
	assert.Equal(t, "sess-1", reuse.SessionID)

	var limited Event
	require.NoError(t, conn.ReadJSON(&limited))
	assert.Equal(t, EventRateLimited, limited.Type)
	assert.Equal(t, "ip:192.0.2.9", limited.Identity)
	assert.Equal(t, "login", limited.Class)
}

func TestListLoginAttempts(t *testing.T) {
	reason := "bad password"
	lister := &staticAttempts{attempts: []domain.LoginAttempt{
		{ID: 1, Username: "victim@b1.example", ClientAddr: "192.0.2.7", Success: false, FailureReason: &reason},
		{ID: 2, Username: "victim@b1.example", ClientAddr: "192.0.2.7", Success: true},
	}}

	r := gin.New()
	h := NewHandler(NewHub(), lister)
	r.GET("/security/login-attempts", h.ListLoginAttempts)

	req := httptest.NewRequest(http.MethodGet, "/security/login-attempts?limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Count    int               `json:"count"`
			Attempts []json.RawMessage `json:"attempts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data.Count)
	assert.Len(t, body.Data.Attempts, 2)
}
