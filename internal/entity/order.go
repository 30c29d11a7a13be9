package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order represents a customer checkout stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        int64        `bun:",pk,autoincrement"`
	UserID    int64        `bun:"user_id,notnull"`
	Status    OrderStatus  `bun:"status,notnull"`
	CreatedAt time.Time    `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	Items     []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// OrderItem is one menu item line within an order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         int64 `bun:",pk,autoincrement"`
	OrderID    int64 `bun:"order_id,notnull"`
	MenuItemID int64 `bun:"menu_item_id,notnull"`
	Quantity   int   `bun:"quantity,notnull"`
}

// OrderStatusLog records a status observed for an order by the event worker.
type OrderStatusLog struct {
	bun.BaseModel `bun:"table:order_status_log,alias:osl"`

	ID         int64       `bun:",pk,autoincrement"`
	OrderID    int64       `bun:"order_id,notnull"`
	Status     OrderStatus `bun:"status,notnull"`
	OccurredAt time.Time   `bun:"occurred_at,notnull"`
}
