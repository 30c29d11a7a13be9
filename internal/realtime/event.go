package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

// Event names as seen by connected clients.
const (
	EventNewOrder          = "new-order"
	EventOrderStatusUpdate = "order-status-update"
	EventYourOrderStatus   = "your-order-status"
	EventMenuItemUpdated   = "menu-item-updated"
)

// Event is a notification pushed to subscribers. The set of implementations is closed.
type Event interface {
	Name() string
	event()
}

// LineItem mirrors one entry of the checkout request.
type LineItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// NewOrder announces a freshly created order to the kitchen.
type NewOrder struct {
	OrderID   int64      `json:"orderId"`
	CreatedAt time.Time  `json:"createdAt"`
	Items     []LineItem `json:"items"`
	UserID    int64      `json:"userId"`
}

// OrderStatusUpdate is broadcast to everyone when an order changes status.
type OrderStatusUpdate struct {
	OrderID int64              `json:"orderId"`
	Status  entity.OrderStatus `json:"status"`
	UserID  int64              `json:"userId"`
}

// YourOrderStatus is sent only to the owning customer's channel.
type YourOrderStatus struct {
	OrderID int64              `json:"orderId"`
	Status  entity.OrderStatus `json:"status"`
}

// MenuItemUpdated is broadcast when a menu item's availability flips.
type MenuItemUpdated struct {
	ID        int64 `json:"id"`
	Available bool  `json:"available"`
}

func (NewOrder) Name() string          { return EventNewOrder }
func (OrderStatusUpdate) Name() string { return EventOrderStatusUpdate }
func (YourOrderStatus) Name() string   { return EventYourOrderStatus }
func (MenuItemUpdated) Name() string   { return EventMenuItemUpdated }

func (NewOrder) event()          {}
func (OrderStatusUpdate) event() {}
func (YourOrderStatus) event()   {}
func (MenuItemUpdated) event()   {}

// Frame is the wire envelope written to websocket clients.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode renders ev as a wire frame.
func Encode(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("nil event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ev.Name(), err)
	}
	return json.Marshal(Frame{Event: ev.Name(), Data: data})
}
