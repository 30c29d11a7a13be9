// Package ws serves the realtime notification stream over websockets.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

const (
	maxMessageSize = 4096
	actionJoin     = "join"
	eventError     = "error"
)

// Handler upgrades authenticated requests and pumps hub frames to the socket.
type Handler struct {
	hub      *realtime.Hub
	tokens   *auth.Tokens
	cfg      config.Realtime
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket Handler.
func NewHandler(hub *realtime.Hub, tokens *auth.Tokens, cfg config.Config, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    hub,
		tokens: tokens,
		cfg:    cfg.Realtime,
		logger: logger.Named("ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/ws", h.serve)
}

type clientMessage struct {
	Action string `json:"action"`
	UserID int64  `json:"userId"`
}

func (h *Handler) serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		var err error
		if raw, err = auth.ExtractBearer(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return response.New(c).WithError(errorbank.Unauthorized("Not authenticated", errorbank.WithCause(err))).Build()
		}
	}
	claims, err := h.tokens.Verify(raw)
	if err != nil {
		return response.New(c).WithError(errorbank.Unauthorized("Invalid or expired token", errorbank.WithCause(err))).Build()
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the failure response
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}

	client, err := h.hub.Connect(claims.UserID, claims.Role)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.cfg.WriteTimeout))
		return conn.Close()
	}
	if err := h.hub.Join(client, realtime.CustomerChannel(claims.UserID)); err != nil {
		h.hub.Disconnect(client)
		return conn.Close()
	}

	h.logger.Debug("websocket connected", zap.Int64("user_id", claims.UserID), zap.String("role", string(claims.Role)))

	go h.writePump(conn, client)
	h.readPump(conn, client)
	return nil
}

// readPump handles client frames until the socket fails, then disconnects the client.
func (h *Handler) readPump(conn *websocket.Conn, client *realtime.Client) {
	defer h.hub.Disconnect(client)

	conn.SetReadLimit(maxMessageSize)
	wait := 2 * h.cfg.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Int64("user_id", client.UserID()), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reject(client, "invalid message")
			continue
		}
		switch msg.Action {
		case actionJoin:
			// only the verified owner may listen on a customer channel
			if msg.UserID != client.UserID() {
				h.reject(client, "cannot join another user's channel")
				continue
			}
			if err := h.hub.Join(client, realtime.CustomerChannel(msg.UserID)); err != nil {
				return
			}
		default:
			h.reject(client, "unknown action")
		}
	}
}

// writePump drains the client's queue and keeps the connection alive with pings.
func (h *Handler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Debug("websocket write failed", zap.Int64("user_id", client.UserID()), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) reject(client *realtime.Client, message string) {
	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return
	}
	frame, err := json.Marshal(realtime.Frame{Event: eventError, Data: data})
	if err != nil {
		return
	}
	if !h.hub.Direct(client, frame) {
		h.logger.Warn("dropping websocket error frame", zap.Int64("user_id", client.UserID()))
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
