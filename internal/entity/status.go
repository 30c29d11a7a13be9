package entity

import "fmt"

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusInMaking  OrderStatus = "in making"
	StatusReady     OrderStatus = "ready"
	StatusCancelled OrderStatus = "cancelled"
)

// ActiveStatuses are the non-terminal states shown on the kitchen board.
var ActiveStatuses = []OrderStatus{StatusPending, StatusInMaking, StatusReady}

// Settable reports whether s may be assigned through a plain status update.
// Cancellation has its own path and is never settable here.
func (s OrderStatus) Settable() bool {
	switch s {
	case StatusPending, StatusInMaking, StatusReady:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled
}

// ParseSettableStatus validates raw as one of the settable statuses.
func ParseSettableStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Settable() {
		return "", fmt.Errorf("invalid status %q", raw)
	}
	return s, nil
}
