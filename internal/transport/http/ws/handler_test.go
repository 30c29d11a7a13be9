package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
)

type env struct {
	hub    *realtime.Hub
	tokens *auth.Tokens
	url    string
}

func newEnv(t *testing.T, origins ...string) *env {
	t.Helper()
	cfg := config.Config{
		Auth:     config.Auth{JWTSecret: "test-secret", Issuer: "foodordering", TokenTTL: time.Hour},
		Realtime: config.Realtime{SendBuffer: 8, WriteTimeout: time.Second, PingInterval: time.Minute, AllowedOrigins: origins},
	}
	hub := realtime.New(cfg.Realtime.SendBuffer, zap.NewNop())
	tokens := auth.NewTokens(cfg)

	e := echo.New()
	Register(e, NewHandler(hub, tokens, cfg, zap.NewNop()))
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &env{hub: hub, tokens: tokens, url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
}

func (e *env) token(t *testing.T, id int64, role entity.Role) string {
	t.Helper()
	raw, err := e.tokens.Issue(&entity.User{ID: id, Username: "u", Role: role})
	require.NoError(t, err)
	return raw
}

func (e *env) dial(t *testing.T, id int64, role entity.Role) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(e.url+"?token="+e.token(t, id, role), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool {
		return e.hub.Subscribers(realtime.CustomerChannel(id)) == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f realtime.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHandler_RejectsUnauthenticated(t *testing.T) {
	e := newEnv(t)

	testCases := map[string]struct {
		url    string
		header http.Header
	}{
		"should reject missing token": {url: e.url},
		"should reject garbage token": {url: e.url + "?token=garbage"},
		"should reject malformed header": {
			url:    e.url,
			header: http.Header{"Authorization": []string{"Token abc"}},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(tc.url, tc.header)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestHandler_AcceptsBearerHeader(t *testing.T) {
	e := newEnv(t)
	header := http.Header{"Authorization": []string{"Bearer " + e.token(t, 3, entity.RoleKitchen)}}

	conn, resp, err := websocket.DefaultDialer.Dial(e.url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return e.hub.Subscribers(realtime.KitchenChannel) == 1 }, time.Second, 10*time.Millisecond)
}

func TestHandler_DeliversKitchenAndOwnChannel(t *testing.T) {
	e := newEnv(t)
	alice := e.dial(t, 1, entity.RoleCustomer)
	bob := e.dial(t, 2, entity.RoleCustomer)

	e.hub.Publish(t.Context(), realtime.CustomerChannel(1), realtime.YourOrderStatus{OrderID: 9, Status: entity.StatusReady})
	e.hub.Publish(t.Context(), realtime.KitchenChannel, realtime.MenuItemUpdated{ID: 4, Available: false})

	f := readFrame(t, alice)
	assert.Equal(t, realtime.EventYourOrderStatus, f.Event)
	assert.JSONEq(t, `{"orderId":9,"status":"ready"}`, string(f.Data))

	f = readFrame(t, alice)
	assert.Equal(t, realtime.EventMenuItemUpdated, f.Event)

	f = readFrame(t, bob)
	assert.Equal(t, realtime.EventMenuItemUpdated, f.Event)
	assert.JSONEq(t, `{"id":4,"available":false}`, string(f.Data))
}

func TestHandler_JoinOtherChannelIsRefused(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, 1, entity.RoleCustomer)

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "join", "userId": 2}))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Event)
	assert.JSONEq(t, `{"message":"cannot join another user's channel"}`, string(f.Data))
	assert.Zero(t, e.hub.Subscribers(realtime.CustomerChannel(2)))

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "join", "userId": 1}))
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "dance"}))
	f = readFrame(t, conn)
	assert.JSONEq(t, `{"message":"unknown action"}`, string(f.Data))
	assert.Equal(t, 1, e.hub.Subscribers(realtime.CustomerChannel(1)))
}

func TestHandler_DisconnectLeavesChannels(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, 5, entity.RoleCustomer)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return e.hub.Subscribers(realtime.CustomerChannel(5)) == 0 && e.hub.Subscribers(realtime.KitchenChannel) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHandler_CheckOrigin(t *testing.T) {
	e := newEnv(t, "http://allowed.example")

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(e.url+"?token="+e.token(t, 1, entity.RoleCustomer), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://allowed.example")
	conn, resp2, err := websocket.DefaultDialer.Dial(e.url+"?token="+e.token(t, 1, entity.RoleCustomer), header)
	require.NoError(t, err)
	defer resp2.Body.Close()
	_ = conn.Close()
}
