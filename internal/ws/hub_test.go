package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-service/internal/models"
	"trade-service/internal/trading"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(nil)

	hub.AddClient(1, nil, ConnInfo{})
	assert.Equal(t, 1, hub.RoomSize(1))

	hub.RemoveClient(1, nil)
	assert.Equal(t, 0, hub.RoomSize(1))
	assert.Empty(t, hub.rooms)
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastMessage(5, models.TradeMessage{ID: 1})
	hub.BroadcastStatus(5, models.StatusCancelled)
}

type validatorStub map[string]int

func (v validatorStub) ValidateToken(_ context.Context, token string) (int, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

type sessionsStub struct{}

func (sessionsStub) Get(_ context.Context, sessionID, requesterID int) (models.TradeMatch, error) {
	if sessionID != 9 {
		return models.TradeMatch{}, trading.ErrNotFound
	}
	if requesterID != 1 && requesterID != 2 {
		return models.TradeMatch{}, trading.ErrForbidden
	}
	return models.TradeMatch{ID: 9, User1ID: 1, User2ID: 2, Status: models.StatusActive}, nil
}

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewSessionWebSocketHandler(hub, sessionsStub{}, validatorStub{"alice": 1, "carol": 3})
	r.GET("/ws/trade-sessions/:session_id", handler.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestSessionWebSocketReceivesBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	srv := newWSServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/trade-sessions/9?token=alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(9) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastMessage(9, models.TradeMessage{ID: 3, SessionID: 9, SenderID: 2, Body: "hello"})
	hub.BroadcastStatus(9, models.StatusCompleted)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first, second models.SessionEvent
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &first))
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &second))

	assert.Equal(t, "message", first.Type)
	require.NotNil(t, first.Message)
	assert.Equal(t, "hello", first.Message.Body)
	assert.Equal(t, "status", second.Type)
	assert.Equal(t, models.StatusCompleted, second.Status)
}

func TestBroadcastDropsStalledPeer(t *testing.T) {
	hub := NewHub(nil)
	hub.writeTimeout = 50 * time.Millisecond
	srv := newWSServer(t, hub)

	// the peer never reads, so socket buffers fill and writes stall
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/trade-sessions/9?token=alice"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize(9) == 1 }, time.Second, 10*time.Millisecond)

	body := strings.Repeat("x", 1<<20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 256 && hub.RoomSize(9) > 0; i++ {
			hub.BroadcastMessage(9, models.TradeMessage{ID: i, SessionID: 9, SenderID: 2, Body: body})
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("broadcast blocked on a peer that stopped reading")
	}
	assert.Equal(t, 0, hub.RoomSize(9))
}

func TestSessionWebSocketRejectsHandshake(t *testing.T) {
	srv := newWSServer(t, NewHub(nil))

	cases := []struct {
		name   string
		path   string
		status int
	}{
		{"bad token", "/ws/trade-sessions/9?token=nobody", http.StatusUnauthorized},
		{"non participant", "/ws/trade-sessions/9?token=carol", http.StatusForbidden},
		{"unknown session", "/ws/trade-sessions/8?token=alice", http.StatusNotFound},
		{"bad id", "/ws/trade-sessions/abc?token=alice", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tc.path), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
