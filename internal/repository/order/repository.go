package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

var repoTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists an order together with its items in one transaction.
// On success order.ID and every item's OrderID are populated.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.Int64("order.user_id", order.UserID),
		attribute.Int("order.items", len(order.Items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order and its items using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().
		Model(order).
		Relation("Items", orderItemsByID).
		Where("o.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// UpdateStatus overwrites the status of an order and returns the updated row.
// Concurrent updates on the same order are last-write-wins.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	order := new(entity.Order)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(order).Where("o.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select order: %w", err)
		}
		order.Status = status
		if _, err := tx.NewUpdate().Model(order).Column("status").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	return order, nil
}

// ListByUser returns every order owned by userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByUser", trace.WithAttributes(attribute.Int64("order.user_id", userID)))
	defer span.End()

	return r.list(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("o.user_id = ?", userID)
	})
}

// ListByStatus returns every order whose status is one of statuses, newest first.
func (r *Repository) ListByStatus(ctx context.Context, statuses ...entity.OrderStatus) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByStatus")
	defer span.End()

	if len(statuses) == 0 {
		return []*entity.Order{}, nil
	}
	return r.list(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("o.status IN (?)", bun.In(statuses))
	})
}

func (r *Repository) list(ctx context.Context, span trace.Span, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*entity.Order, error) {
	orders := make([]*entity.Order, 0)
	q := r.reader.NewSelect().
		Model(&orders).
		Relation("Items", orderItemsByID).
		OrderExpr("o.created_at DESC, o.id DESC")
	if err := filter(q).Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// AppendStatusLog records a status observation for an order.
func (r *Repository) AppendStatusLog(ctx context.Context, entry *entity.OrderStatusLog) error {
	if entry == nil {
		return errors.New("nil status log entry")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AppendStatusLog", trace.WithAttributes(attribute.Int64("order.id", entry.OrderID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(entry).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListStatusLog returns the recorded status history of an order, oldest first.
func (r *Repository) ListStatusLog(ctx context.Context, orderID int64) ([]entity.OrderStatusLog, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListStatusLog", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	entries := make([]entity.OrderStatusLog, 0)
	err := r.reader.NewSelect().
		Model(&entries).
		Where("osl.order_id = ?", orderID).
		OrderExpr("osl.occurred_at ASC, osl.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return entries, nil
}

func orderItemsByID(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("oi.id ASC")
}
