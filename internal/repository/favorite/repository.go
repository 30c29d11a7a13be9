package favorite

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

var repoTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/repository/favorite")

// Repository stores the menu items a user has starred.
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

// List returns the starred menu items of a user ordered by id.
func (r *Repository) List(ctx context.Context, userID int64) ([]*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "FavoriteRepository.List", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	items := make([]*entity.MenuItem, 0)
	err := r.reader.NewSelect().
		Model(&items).
		Join("JOIN favorites AS f ON f.menu_item_id = mi.id").
		Where("f.user_id = ?", userID).
		OrderExpr("mi.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}

// Add stars a menu item; starring twice is a no-op.
func (r *Repository) Add(ctx context.Context, userID, menuItemID int64) error {
	ctx, span := repoTracer.Start(ctx, "FavoriteRepository.Add", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("menu_item.id", menuItemID),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fav := &entity.Favorite{UserID: userID, MenuItemID: menuItemID}
		exists, err := tx.NewSelect().Model(fav).WherePK().Exists(ctx)
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		if exists {
			return nil
		}
		if _, err := tx.NewInsert().Model(fav).Exec(ctx); err != nil {
			return fmt.Errorf("insert favorite: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Remove unstars a menu item; removing a missing favorite is a no-op.
func (r *Repository) Remove(ctx context.Context, userID, menuItemID int64) error {
	ctx, span := repoTracer.Start(ctx, "FavoriteRepository.Remove", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("menu_item.id", menuItemID),
	))
	defer span.End()

	_, err := r.writer.NewDelete().
		Model((*entity.Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("menu_item_id = ?", menuItemID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}
