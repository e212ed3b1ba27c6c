package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/pkg/ratelimit"
)

const testGatewayKey = "correct-horse-battery-staple"

type fakeTokens struct{}

func (fakeTokens) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	if token != "good" {
		return nil, pkg.ErrUnauthorized
	}
	return &models.TokenClaims{MemberID: "m1", DiscordName: "ann"}, nil
}

type fakeGateway struct{}

func (fakeGateway) VerifyGatewayKey(key string) bool { return key == testGatewayKey }

type testServer struct {
	hub *Hub
	srv *httptest.Server
}

func newTestServer(t *testing.T, setup func(h *Hub)) *testServer {
	t.Helper()

	hub := NewHub(zap.NewNop())
	if setup != nil {
		setup(hub)
	}
	go hub.Run()

	limiter := ratelimit.NewAttemptLimiter(2, time.Minute)
	handler := NewHandler(hub, fakeTokens{}, fakeGateway{}, limiter, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", handler.HandleObserver)
	mux.HandleFunc("GET /gateway", handler.HandleGateway)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
		limiter.Close()
	})
	return &testServer{hub: hub, srv: srv}
}

func (ts *testServer) dial(t *testing.T, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestGatewayRejectsBadKeyAndRateLimits(t *testing.T) {
	ts := newTestServer(t, nil)

	for i := 0; i < 2; i++ {
		_, resp, err := ts.dial(t, "/gateway?key=wrong")
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// the limit applies even to the correct key
	_, resp, err := ts.dial(t, "/gateway?key="+testGatewayKey)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestObserverRequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)

	_, resp, err := ts.dial(t, "/ws")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = ts.dial(t, "/ws?token=bad")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRelayEventsDispatchedInOrder(t *testing.T) {
	received := make(chan models.VoiceStateChange, 4)
	ts := newTestServer(t, func(h *Hub) {
		h.OnVoiceStateUpdate(func(change models.VoiceStateChange) error {
			if change.Handle == "" {
				return errors.New("missing user")
			}
			received <- change
			return nil
		})
	})

	conn, _, err := ts.dial(t, "/gateway?key="+testGatewayKey)
	require.NoError(t, err)
	defer conn.Close()

	ready := readEvent(t, conn)
	assert.Equal(t, OpReady, ready["op"])

	for _, after := range []string{"lobby", ""} {
		require.NoError(t, conn.WriteJSON(Event{Op: OpVoiceStateUpdate, Data: models.VoiceStateChange{
			Handle: "ann", AfterChannelID: after,
		}}))
	}

	first := <-received
	second := <-received
	assert.Equal(t, "lobby", first.AfterChannelID)
	assert.Equal(t, "", second.AfterChannelID)

	require.NoError(t, conn.WriteJSON(Event{Op: OpVoiceStateUpdate, Data: models.VoiceStateChange{}}))
	rejected := readEvent(t, conn)
	assert.Equal(t, OpError, rejected["op"])
}

func TestBroadcastReachesObserversOnly(t *testing.T) {
	ts := newTestServer(t, nil)

	observer, _, err := ts.dial(t, "/ws?token=good")
	require.NoError(t, err)
	defer observer.Close()
	ready := readEvent(t, observer)
	assert.Equal(t, OpReady, ready["op"])

	relay, _, err := ts.dial(t, "/gateway?key="+testGatewayKey)
	require.NoError(t, err)
	defer relay.Close()
	readEvent(t, relay)

	assert.Equal(t, map[Role]int{RoleRelay: 1, RoleObserver: 1}, ts.hub.ConnectionCount())

	ts.hub.BroadcastToAll(Event{Op: OpAttendanceUpdate, Data: map[string]string{"handle": "ann"}})

	update := readEvent(t, observer)
	assert.Equal(t, OpAttendanceUpdate, update["op"])
	assert.EqualValues(t, 1, update["seq"])

	// the relay only ever hears heartbeat acks
	require.NoError(t, relay.WriteJSON(Event{Op: OpHeartbeat}))
	ack := readEvent(t, relay)
	assert.Equal(t, OpHeartbeatAck, ack["op"])
}
