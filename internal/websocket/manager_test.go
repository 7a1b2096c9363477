package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/collegedash/internal/navigation"
)

// MockOriginValidator for testing
type MockOriginValidator struct {
	allowed bool
}

func (m *MockOriginValidator) IsAllowedOrigin(string) bool {
	return m.allowed
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + session
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) UpdateMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestNewHubRequiresValidator(t *testing.T) {
	assert.Panics(t, func() { NewHub(nil, nil) })
}

func TestPublishReachesOnlyTheSession(t *testing.T) {
	hub := NewHub(AllowList{}, nil)
	defer hub.Shutdown(context.Background())
	srv := newTestServer(t, hub)

	a1 := dial(t, srv, "a")
	a2 := dial(t, srv, "a")
	b := dial(t, srv, "b")

	require.Eventually(t, func() bool {
		return hub.ClientCount("a") == 2 && hub.ClientCount("b") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, hub.TotalClients())
	assert.ElementsMatch(t, []string{"a", "b"}, hub.Sessions())

	hub.Publish("a", NavigationMessage(navigation.Event{
		From:      "overview",
		To:        "epatracking",
		Cause:     navigation.CauseNavigate,
		Timestamp: time.Now(),
	}))

	for _, conn := range []*websocket.Conn{a1, a2} {
		msg := readMessage(t, conn)
		assert.Equal(t, MessageNavigated, msg.Type)
		assert.Equal(t, "epatracking", msg.To)
		assert.Equal(t, "navigate", msg.Cause)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, _, err := b.Read(ctx)
	assert.Error(t, err, "session b receives nothing")
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(AllowList{}, nil)
	defer hub.Shutdown(context.Background())
	srv := newTestServer(t, hub)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	require.Eventually(t, func() bool { return hub.TotalClients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(UpdateMessage{Type: MessageAliasesReload, Timestamp: time.Now()})
	assert.Equal(t, MessageAliasesReload, readMessage(t, a).Type)
	assert.Equal(t, MessageAliasesReload, readMessage(t, b).Type)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(AllowList{}, nil)
	defer hub.Shutdown(context.Background())
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "a")
	require.Eventually(t, func() bool { return hub.ClientCount("a") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	assert.Eventually(t, func() bool { return hub.ClientCount("a") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, hub.Sessions())
}

func TestOriginRejected(t *testing.T) {
	hub := NewHub(&MockOriginValidator{allowed: false}, nil)
	defer hub.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()

	hub.HandleWebSocket(rec, req, "a")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShutdown(t *testing.T) {
	hub := NewHub(AllowList{}, nil)
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "a")
	require.Eventually(t, func() bool { return hub.ClientCount("a") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.True(t, hub.IsShutdown())
	assert.Equal(t, 0, hub.TotalClients())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Error(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	hub.HandleWebSocket(rec, req, "a")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Publishing after shutdown is harmless.
	hub.Publish("a", UpdateMessage{Type: MessageNavigated})
}

func TestAllowList(t *testing.T) {
	list := AllowList{"http://localhost:8080", "https://dash.example.ac.uk/"}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"HTTP://LOCALHOST:8080", true},
		{"https://dash.example.ac.uk", true},
		{"http://dash.example.ac.uk", false},
		{"http://localhost:3000", false},
		{"http://evil.com", false},
		{"javascript://localhost:8080", false},
		{"not-a-url", false},
		{"http://localhost:8080.evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, list.IsAllowedOrigin(tt.origin))
		})
	}
}
