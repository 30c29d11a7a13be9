// Package dbtest provides an in-memory SQLite database with the application schema for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

var models = []any{
	(*entity.User)(nil),
	(*entity.MenuItem)(nil),
	(*entity.Ingredient)(nil),
	(*entity.MenuItemIngredient)(nil),
	(*entity.Order)(nil),
	(*entity.OrderItem)(nil),
	(*entity.OrderStatusLog)(nil),
	(*entity.Favorite)(nil),
}

// New opens a fresh in-memory database, creates every table and closes it on cleanup.
// The pool is pinned to one connection so the memory database outlives individual queries.
func New(t testing.TB) *database.Connections {
	t.Helper()

	db, err := database.Open(config.Database{Driver: "sqlite", MaxOpenConns: 1, MaxIdleConns: 1}, "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}

	return &database.Connections{Writer: db, Reader: db}
}

// Insert stores rows directly, bypassing repositories.
func Insert(t testing.TB, db bun.IDB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		if _, err := db.NewInsert().Model(row).Exec(context.Background()); err != nil {
			t.Fatalf("insert %T: %v", row, err)
		}
	}
}
