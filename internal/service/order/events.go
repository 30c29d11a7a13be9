package order

import (
	"time"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

// Domain event types published on the message bus.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is emitted on the message bus after an order mutation commits.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    int64              `json:"order_id"`
	UserID     int64              `json:"user_id"`
	Status     entity.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}
