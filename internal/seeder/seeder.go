package seeder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	menurepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/menu"
	userrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/account"
)

// Module provides the seeder to CLI commands.
var Module = fx.Provide(
	New,
	func(a *account.Service) Hasher { return a },
)

// Hasher hashes seeded account passwords.
type Hasher interface {
	HashPassword(password string) (string, error)
}

// Params groups seeder dependencies.
type Params struct {
	fx.In

	Users  *userrepo.Repository
	Menu   *menurepo.Repository
	Hasher Hasher
	Logger *zap.Logger
}

// Seeder populates a fresh database with staff accounts and a sample menu.
// Existing rows are left untouched so it can run repeatedly.
type Seeder struct {
	users  *userrepo.Repository
	menu   *menurepo.Repository
	hasher Hasher
	logger *zap.Logger
}

type seedItem struct {
	item        entity.MenuItem
	ingredients []string
}

var defaultUsers = []entity.User{
	{Username: "admin", Email: "admin@foodordering.local", Role: entity.RoleAdmin},
	{Username: "kitchen", Email: "kitchen@foodordering.local", Role: entity.RoleKitchen},
	{Username: "customer", Email: "customer@foodordering.local", Role: entity.RoleCustomer},
}

func str(s string) *string { return &s }

var defaultMenu = []seedItem{
	{
		item:        entity.MenuItem{Name: "Margherita", Price: 89, Category: str("Pizza"), Available: true},
		ingredients: []string{"tomato sauce", "mozzarella", "basil"},
	},
	{
		item:        entity.MenuItem{Name: "Pepperoni", Price: 99, Category: str("Pizza"), Available: true},
		ingredients: []string{"tomato sauce", "mozzarella", "pepperoni"},
	},
	{
		item:        entity.MenuItem{Name: "Caesar Salad", Price: 79, Category: str("Salad"), Available: true},
		ingredients: []string{"romaine", "parmesan", "croutons", "caesar dressing"},
	},
	{
		item:        entity.MenuItem{Name: "Lemonade", Price: 35, Category: str("Drinks"), Available: true},
		ingredients: []string{"lemon", "sugar", "water"},
	},
}

// New constructs a Seeder.
func New(p Params) *Seeder {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: p.Users, menu: p.Menu, hasher: p.Hasher, logger: logger}
}

// Run seeds accounts and the menu.
func (s *Seeder) Run(ctx context.Context, password string) error {
	if err := s.Users(ctx, password); err != nil {
		return err
	}
	return s.Menu(ctx)
}

// Users creates one account per role, all sharing password.
func (s *Seeder) Users(ctx context.Context, password string) error {
	if password == "" {
		return errors.New("seed password must not be empty")
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	for _, sample := range defaultUsers {
		_, err := s.users.GetByEmail(ctx, sample.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, userrepo.ErrNotFound) {
			return fmt.Errorf("lookup %s: %w", sample.Email, err)
		}
		u := sample
		u.Password = hash
		if err := s.users.Create(ctx, &u); err != nil {
			return fmt.Errorf("create %s: %w", sample.Email, err)
		}
		created++
	}

	s.logger.Info("seeded users", zap.Int("created", created), zap.Int("total", len(defaultUsers)))
	return nil
}

// Menu creates the sample menu items that do not exist yet, matched by name.
func (s *Seeder) Menu(ctx context.Context) error {
	existing, err := s.menu.List(ctx, menurepo.ByName)
	if err != nil {
		return fmt.Errorf("list menu: %w", err)
	}
	names := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		names[m.Name] = struct{}{}
	}

	created := 0
	for _, sample := range defaultMenu {
		if _, ok := names[sample.item.Name]; ok {
			continue
		}
		item := sample.item
		if err := s.menu.Create(ctx, &item, sample.ingredients); err != nil {
			return fmt.Errorf("create menu item %s: %w", item.Name, err)
		}
		created++
	}

	s.logger.Info("seeded menu", zap.Int("created", created), zap.Int("total", len(defaultMenu)))
	return nil
}
