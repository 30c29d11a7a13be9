package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

// Channel names a broadcast group.
type Channel string

// KitchenChannel reaches every connected client.
const KitchenChannel Channel = "kitchen"

// CustomerChannel is the private channel of one customer.
func CustomerChannel(userID int64) Channel {
	return Channel(fmt.Sprintf("user_%d", userID))
}

// ErrHubClosed is returned when connecting to a hub that has shut down.
var ErrHubClosed = errors.New("realtime hub closed")

// ErrUnknownClient is returned for clients that are not (or no longer) connected.
var ErrUnknownClient = errors.New("realtime client not connected")

// Publisher fans events out to subscribers. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, ch Channel, ev Event)
}

// Client is one live connection registered with the hub.
type Client struct {
	userID   int64
	role     entity.Role
	send     chan []byte
	channels map[Channel]struct{}
}

// UserID returns the verified identity the client connected with.
func (c *Client) UserID() int64 { return c.userID }

// Role returns the role the client connected with.
func (c *Client) Role() entity.Role { return c.role }

// Send yields frames queued for the client. It is closed on disconnect.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub is the connection registry. Join, leave and publish may run concurrently.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	members map[Channel]map[*Client]struct{}
	closed  bool

	buffer int
	logger *zap.Logger

	connections metric.Int64UpDownCounter
	published   metric.Int64Counter
	dropped     metric.Int64Counter
}

// Module provides the hub and exposes it as the Publisher used by services.
var Module = fx.Options(
	fx.Provide(
		NewHub,
		func(h *Hub) Publisher { return h },
	),
)

// NewHub builds a hub tied to the application lifecycle.
func NewHub(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) *Hub {
	hub := New(cfg.Realtime.SendBuffer, logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("closing realtime hub")
			hub.Close()
			return nil
		},
	})
	return hub
}

// New builds a standalone hub with per-client send buffers of the given size.
func New(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Hub{
		clients: make(map[*Client]struct{}),
		members: make(map[Channel]map[*Client]struct{}),
		buffer:  buffer,
		logger:  logger,
	}

	meter := otel.Meter("github.com/AndersBondeLudvigsen/FoodOrdering/realtime")
	var err error
	if h.connections, err = meter.Int64UpDownCounter("realtime.connections"); err != nil {
		logger.Warn("realtime connections metric unavailable", zap.Error(err))
	}
	if h.published, err = meter.Int64Counter("realtime.frames.published"); err != nil {
		logger.Warn("realtime published metric unavailable", zap.Error(err))
	}
	if h.dropped, err = meter.Int64Counter("realtime.frames.dropped"); err != nil {
		logger.Warn("realtime dropped metric unavailable", zap.Error(err))
	}
	return h
}

// Connect registers a new client. Every client receives kitchen channel traffic.
func (h *Hub) Connect(userID int64, role entity.Role) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	c := &Client{
		userID:   userID,
		role:     role,
		send:     make(chan []byte, h.buffer),
		channels: make(map[Channel]struct{}),
	}
	h.clients[c] = struct{}{}
	h.addConnections(1)
	return c, nil
}

// Join subscribes c to ch. Joining the kitchen channel is implicit and a no-op.
func (h *Hub) Join(c *Client, ch Channel) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return ErrUnknownClient
	}
	if ch == KitchenChannel {
		return nil
	}
	set, ok := h.members[ch]
	if !ok {
		set = make(map[*Client]struct{})
		h.members[ch] = set
	}
	set[c] = struct{}{}
	c.channels[ch] = struct{}{}
	return nil
}

// Leave unsubscribes c from ch.
func (h *Hub) Leave(c *Client, ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, ch)
}

// Disconnect removes c from every channel and closes its send queue.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	for ch := range c.channels {
		h.leaveLocked(c, ch)
	}
	delete(h.clients, c)
	close(c.send)
	h.addConnections(-1)
}

func (h *Hub) leaveLocked(c *Client, ch Channel) {
	if set, ok := h.members[ch]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.members, ch)
		}
	}
	delete(c.channels, ch)
}

// Publish encodes ev and queues it for every subscriber of ch without blocking.
// Subscribers with a full queue miss the event.
func (h *Hub) Publish(ctx context.Context, ch Channel, ev Event) {
	frame, err := Encode(ev)
	if err != nil {
		h.logger.Error("encode realtime event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if ch != KitchenChannel {
		targets = h.members[ch]
	}

	attrs := metric.WithAttributes(attribute.String("event", ev.Name()))
	for c := range targets {
		select {
		case c.send <- frame:
			if h.published != nil {
				h.published.Add(ctx, 1, attrs)
			}
		default:
			if h.dropped != nil {
				h.dropped.Add(ctx, 1, attrs)
			}
			h.logger.Warn("realtime client queue full; dropping event",
				zap.String("event", ev.Name()),
				zap.String("channel", string(ch)),
				zap.Int64("user_id", c.userID),
			)
		}
	}
}

// Direct queues a raw frame for a single client. It reports whether the frame was queued.
func (h *Hub) Direct(c *Client, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Subscribers reports how many clients currently receive traffic for ch.
func (h *Hub) Subscribers(ch Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ch == KitchenChannel {
		return len(h.clients)
	}
	return len(h.members[ch])
}

// Close disconnects every client and rejects further connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		h.addConnections(-1)
	}
	h.clients = make(map[*Client]struct{})
	h.members = make(map[Channel]map[*Client]struct{})
}

func (h *Hub) addConnections(delta int64) {
	if h.connections != nil {
		h.connections.Add(context.Background(), delta)
	}
}
