package menu

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

var repoTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/repository/menu")

// ErrNotFound is returned when a menu item is missing.
var ErrNotFound = errors.New("menu item not found")

// Ordering selects the sort key of a menu listing.
type Ordering int

const (
	ByID Ordering = iota
	ByName
)

// Repository encapsulates read/write access for the menu catalog.
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

// List returns every menu item with its ingredients.
func (r *Repository) List(ctx context.Context, order Ordering) ([]*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.List")
	defer span.End()

	items := make([]*entity.MenuItem, 0)
	q := r.reader.NewSelect().Model(&items).Relation("Ingredients", ingredientsByName)
	switch order {
	case ByName:
		q = q.OrderExpr("mi.name ASC, mi.id ASC")
	default:
		q = q.OrderExpr("mi.id ASC")
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}

// GetByID fetches one menu item with its ingredients.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.GetByID", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item := new(entity.MenuItem)
	err := r.reader.NewSelect().
		Model(item).
		Relation("Ingredients", ingredientsByName).
		Where("mi.id = ?", id).
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
	return item, nil
}

// Create inserts a menu item and links it to the named ingredients,
// creating ingredients that do not exist yet.
func (r *Repository) Create(ctx context.Context, item *entity.MenuItem, ingredients []string) error {
	if item == nil {
		return errors.New("nil menu item")
	}
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Create", trace.WithAttributes(attribute.String("menu_item.name", item.Name)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(item).Exec(ctx); err != nil {
			return fmt.Errorf("insert menu item: %w", err)
		}
		return linkIngredients(ctx, tx, item.ID, ingredients)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Update replaces the fields of an existing menu item and its ingredient links.
func (r *Repository) Update(ctx context.Context, item *entity.MenuItem, ingredients []string) error {
	if item == nil {
		return errors.New("nil menu item")
	}
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Update", trace.WithAttributes(attribute.Int64("menu_item.id", item.ID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*entity.MenuItem)(nil)).Where("mi.id = ?", item.ID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("select menu item: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.NewUpdate().
			Model(item).
			Column("name", "price", "category", "image_url", "available").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update menu item: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*entity.MenuItemIngredient)(nil)).
			Where("menu_item_id = ?", item.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("unlink ingredients: %w", err)
		}
		return linkIngredients(ctx, tx, item.ID, ingredients)
	})
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// Delete removes a menu item together with its ingredient links and favorites.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Delete", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*entity.MenuItemIngredient)(nil)).Where("menu_item_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("unlink ingredients: %w", err)
		}
		if _, err := tx.NewDelete().Model((*entity.Favorite)(nil)).Where("menu_item_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		res, err := tx.NewDelete().Model((*entity.MenuItem)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete menu item: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

// SetAvailability overwrites the availability flag of a menu item.
func (r *Repository) SetAvailability(ctx context.Context, id int64, available bool) (*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.SetAvailability", trace.WithAttributes(
		attribute.Int64("menu_item.id", id),
		attribute.Bool("menu_item.available", available),
	))
	defer span.End()

	item := new(entity.MenuItem)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(item).Where("mi.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select menu item: %w", err)
		}
		item.Available = available
		if _, err := tx.NewUpdate().Model(item).Column("available").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update availability: %w", err)
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
	return item, nil
}

// linkIngredients resolves names to ingredient rows, inserting the missing
// ones, and links each to the menu item. Duplicate names are linked once.
func linkIngredients(ctx context.Context, tx bun.Tx, menuItemID int64, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		ing := new(entity.Ingredient)
		err := tx.NewSelect().Model(ing).Where("i.name = ?", name).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			ing.Name = name
			if _, err := tx.NewInsert().Model(ing).Exec(ctx); err != nil {
				return fmt.Errorf("insert ingredient %q: %w", name, err)
			}
		case err != nil:
			return fmt.Errorf("select ingredient %q: %w", name, err)
		}

		link := &entity.MenuItemIngredient{MenuItemID: menuItemID, IngredientID: ing.ID}
		if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
			return fmt.Errorf("link ingredient %q: %w", name, err)
		}
	}
	return nil
}

func ingredientsByName(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("i.name ASC")
}
