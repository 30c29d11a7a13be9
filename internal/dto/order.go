package dto

import (
	"time"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

// OrderItemResponse is one line of an order listing.
type OrderItemResponse struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID        int64               `json:"id"`
	Status    entity.OrderStatus  `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []OrderItemResponse `json:"items"`
}

// OrderCreatedResponse is returned by order creation.
type OrderCreatedResponse struct {
	OrderID   int64     `json:"orderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderStatusResponse is returned by status updates and cancellation.
type OrderStatusResponse struct {
	OrderID int64              `json:"orderId"`
	Status  entity.OrderStatus `json:"status"`
}

// StatusLogEntryResponse is one recorded status of an order.
type StatusLogEntryResponse struct {
	Status     entity.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// FromOrder converts an order with its items.
func FromOrder(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}
	return OrderResponse{
		ID:        o.ID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

// FromOrders converts a listing, keeping its order.
func FromOrders(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// FromStatusLog converts a status history.
func FromStatusLog(entries []entity.OrderStatusLog) []StatusLogEntryResponse {
	out := make([]StatusLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusLogEntryResponse{Status: e.Status, OccurredAt: e.OccurredAt})
	}
	return out
}
