package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/messaging"
	orderrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/order"
	ordersvc "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/worker"
)

var workerTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/worker/order")

// StatusLogWriter persists status history entries.
type StatusLogWriter interface {
	AppendStatusLog(ctx context.Context, entry *entity.OrderStatusLog) error
}

// Module registers the status history handler for both order event types.
var Module = fx.Module("worker_order",
	fx.Provide(
		func(r *orderrepo.Repository) StatusLogWriter { return r },
		fx.Annotate(
			NewStatusLogHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewStatusChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusLogHandler records the initial status of created orders.
func NewStatusLogHandler(store StatusLogWriter, logger *zap.Logger) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		EventType: ordersvc.EventOrderCreated,
		Handler:   recordStatus(store, logger),
	}
}

// NewStatusChangedHandler records every later status transition.
func NewStatusChangedHandler(store StatusLogWriter, logger *zap.Logger) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		EventType: ordersvc.EventOrderStatusChanged,
		Handler:   recordStatus(store, logger),
	}
}

func recordStatus(store StatusLogWriter, logger *zap.Logger) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.status_log", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.String("event.type", msg.EventType()),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err), zap.Int64("offset", msg.Offset))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return fmt.Errorf("decode order event: %w", err)
		}
		if event.OrderID <= 0 || !(event.Status.Settable() || event.Status.Terminal()) {
			logger.Warn("skipping malformed order event",
				zap.Int64("order_id", event.OrderID),
				zap.String("status", string(event.Status)),
			)
			return nil
		}
		span.SetAttributes(attribute.Int64("order.id", event.OrderID))

		entry := &entity.OrderStatusLog{
			OrderID:    event.OrderID,
			Status:     event.Status,
			OccurredAt: event.OccurredAt.UTC(),
		}
		if err := store.AppendStatusLog(ctx, entry); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "append failed")
			return fmt.Errorf("append status log for order %d: %w", event.OrderID, err)
		}

		logger.Debug("order status recorded",
			zap.Int64("order_id", event.OrderID),
			zap.String("status", string(event.Status)),
		)
		return nil
	}
}
