package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database/dbtest"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	menurepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/menu"
	userrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
)

type bcryptHasher struct{}

func (bcryptHasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash), err
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	conns := dbtest.New(t)
	users := userrepo.NewRepository(conns)
	menu := menurepo.NewRepository(conns)
	s := New(Params{Users: users, Menu: menu, Hasher: bcryptHasher{}, Logger: zap.NewNop()})
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, "secret"))
	require.NoError(t, s.Run(ctx, "other"))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	roles := map[entity.Role]bool{}
	for _, u := range all {
		roles[u.Role] = true
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")), u.Email)
	}
	assert.Equal(t, map[entity.Role]bool{entity.RoleAdmin: true, entity.RoleKitchen: true, entity.RoleCustomer: true}, roles)

	items, err := menu.List(ctx, menurepo.ByID)
	require.NoError(t, err)
	require.Len(t, items, len(defaultMenu))
	assert.Equal(t, "Margherita", items[0].Name)
	assert.ElementsMatch(t, []string{"tomato sauce", "mozzarella", "basil"}, items[0].IngredientNames())
}

func TestSeeder_RejectsEmptyPassword(t *testing.T) {
	conns := dbtest.New(t)
	s := New(Params{Users: userrepo.NewRepository(conns), Menu: menurepo.NewRepository(conns), Hasher: bcryptHasher{}})

	assert.EqualError(t, s.Users(context.Background(), ""), "seed password must not be empty")
}
