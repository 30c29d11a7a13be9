package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/messaging"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/order"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/service/order")
	serviceMeter  = otel.Meter("github.com/AndersBondeLudvigsen/FoodOrdering/service/order")
)

const busPublishTimeout = 5 * time.Second

// LineItem is one requested menu item with its quantity.
type LineItem = realtime.LineItem

// Service owns the order lifecycle: creation, status changes and
// cancellation, each followed by realtime notifications.
type Service struct {
	repo     *repo.Repository
	notifier realtime.Publisher
	bus      messaging.Client
	busOn    bool
	logger   *zap.Logger
	now      func() time.Time

	created     metric.Int64Counter
	transitions metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Notifier   realtime.Publisher
	Bus        messaging.Client `optional:"true"`
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     p.Repository,
		notifier: p.Notifier,
		bus:      p.Bus,
		busOn:    p.Config.Messaging.Enabled && p.Bus != nil,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}

	var err error
	if s.created, err = serviceMeter.Int64Counter("orders.created"); err != nil {
		logger.Warn("orders created metric unavailable", zap.Error(err))
	}
	if s.transitions, err = serviceMeter.Int64Counter("orders.status_transitions"); err != nil {
		logger.Warn("order transitions metric unavailable", zap.Error(err))
	}
	return s
}

// Create validates the cart, stores the order with its items atomically and
// announces it to the kitchen.
func (s *Service) Create(ctx context.Context, customerID int64, items []LineItem) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, errorbank.BadRequest("Cart is empty")
	}
	for i, item := range items {
		if item.ID <= 0 {
			return nil, errorbank.BadRequest("Invalid menu item id", errorbank.WithDetail("index", i))
		}
		if item.Quantity < 1 {
			return nil, errorbank.BadRequest("Quantity must be at least 1", errorbank.WithDetail("index", i))
		}
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int64("order.user_id", customerID),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	order := &entity.Order{
		UserID:    customerID,
		Status:    entity.StatusPending,
		CreatedAt: s.now(),
		Items:     make([]*entity.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, &entity.OrderItem{MenuItemID: item.ID, Quantity: item.Quantity})
	}

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error creating order", errorbank.WithCause(err))
	}

	if s.created != nil {
		s.created.Add(ctx, 1)
	}
	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", customerID),
		zap.Int("items", len(items)),
	)

	s.notifier.Publish(ctx, realtime.KitchenChannel, realtime.NewOrder{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
		Items:     append([]LineItem(nil), items...),
		UserID:    customerID,
	})
	s.publishEvent(ctx, EventOrderCreated, order)

	return order, nil
}

// SetStatus moves an order to one of the settable statuses. Any settable
// status may follow any other.
func (s *Service) SetStatus(ctx context.Context, orderID int64, raw string) (*entity.Order, error) {
	status, err := entity.ParseSettableStatus(raw)
	if err != nil {
		return nil, errorbank.BadRequest("Invalid status", errorbank.WithCause(err), errorbank.WithDetail("status", raw))
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.SetStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	return s.transition(ctx, span, orderID, status)
}

// Cancel forces an order into the cancelled state. Cancelling twice succeeds
// and notifies again.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Cancel", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	return s.transition(ctx, span, orderID, entity.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, span trace.Span, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	order, err := s.repo.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("Order not found", errorbank.WithDetail("orderId", orderID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error updating order", errorbank.WithCause(err))
	}

	if s.transitions != nil {
		s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
	s.logger.Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.String("status", string(status)),
	)

	s.notifier.Publish(ctx, realtime.KitchenChannel, realtime.OrderStatusUpdate{
		OrderID: order.ID,
		Status:  order.Status,
		UserID:  order.UserID,
	})
	s.notifier.Publish(ctx, realtime.CustomerChannel(order.UserID), realtime.YourOrderStatus{
		OrderID: order.ID,
		Status:  order.Status,
	})
	s.publishEvent(ctx, EventOrderStatusChanged, order)

	return order, nil
}

// ListForCustomer returns the orders of a customer with their items, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListForCustomer", trace.WithAttributes(attribute.Int64("order.user_id", customerID)))
	defer span.End()

	orders, err := s.repo.ListByUser(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListActiveForKitchen returns every order that is not cancelled, newest first.
func (s *Service) ListActiveForKitchen(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListActiveForKitchen")
	defer span.End()

	orders, err := s.repo.ListByStatus(ctx, entity.ActiveStatuses...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// History returns the recorded status log of an order, oldest first.
func (s *Service) History(ctx context.Context, orderID int64) ([]entity.OrderStatusLog, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.History", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found", errorbank.WithDetail("orderId", orderID))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching order history", errorbank.WithCause(err))
	}

	entries, err := s.repo.ListStatusLog(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("Server error fetching order history", errorbank.WithCause(err))
	}
	return entries, nil
}

// publishEvent emits a domain event on the bus. Failures are logged only.
func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.busOn {
		return
	}
	payload, err := json.Marshal(OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), busPublishTimeout)
	defer cancel()

	err = s.bus.Publish(ctx, messaging.Message{
		Key:     []byte(fmt.Sprintf("order-%d", order.ID)),
		Value:   payload,
		Headers: map[string]string{messaging.HeaderEventType: eventType},
	})
	if err != nil {
		s.logger.Error("publish order event",
			zap.String("type", eventType),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}
