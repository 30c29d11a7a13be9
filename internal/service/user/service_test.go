package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database/dbtest"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	repo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

type mockHasher struct {
	mock.Mock
}

func (m *mockHasher) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func seed(t *testing.T) (*repo.Repository, *entity.User, *entity.User) {
	t.Helper()
	users := repo.NewRepository(dbtest.New(t))
	alice := &entity.User{Username: "alice", Email: "alice@example.com", Password: "h", Role: entity.RoleCustomer}
	bob := &entity.User{Username: "bob", Email: "bob@example.com", Password: "h", Role: entity.RoleCustomer}
	require.NoError(t, users.Create(context.Background(), alice))
	require.NoError(t, users.Create(context.Background(), bob))
	return users, alice, bob
}

func TestService_List(t *testing.T) {
	users, _, _ := seed(t)
	svc := New(users, &mockHasher{}, zap.NewNop())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
}

func TestService_Update(t *testing.T) {
	testCases := map[string]struct {
		patch    func(alice, bob *entity.User) (int64, Patch)
		hashErr  error
		wantKind errorbank.Kind
		check    func(t *testing.T, u *entity.User)
	}{
		"should promote to kitchen": {
			patch: func(a, _ *entity.User) (int64, Patch) { return a.ID, Patch{Role: "kitchen"} },
			check: func(t *testing.T, u *entity.User) { assert.Equal(t, entity.RoleKitchen, u.Role) },
		},
		"should hash new password": {
			patch: func(a, _ *entity.User) (int64, Patch) { return a.ID, Patch{Password: "pw"} },
			check: func(t *testing.T, u *entity.User) { assert.Equal(t, "hashed:pw", u.Password) },
		},
		"should reject unknown role": {
			patch:    func(a, _ *entity.User) (int64, Patch) { return a.ID, Patch{Role: "chef"} },
			wantKind: errorbank.KindBadRequest,
		},
		"should reject empty patch": {
			patch:    func(a, _ *entity.User) (int64, Patch) { return a.ID, Patch{Username: "  "} },
			wantKind: errorbank.KindBadRequest,
		},
		"should reject duplicate email": {
			patch:    func(a, b *entity.User) (int64, Patch) { return a.ID, Patch{Email: b.Email} },
			wantKind: errorbank.KindConflict,
		},
		"should report unknown user": {
			patch:    func(_, _ *entity.User) (int64, Patch) { return 999, Patch{Username: "ghost"} },
			wantKind: errorbank.KindNotFound,
		},
		"should surface hash failure": {
			patch:    func(a, _ *entity.User) (int64, Patch) { return a.ID, Patch{Password: "pw"} },
			hashErr:  errors.New("boom"),
			wantKind: errorbank.KindInternal,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			users, alice, bob := seed(t)
			hasher := &mockHasher{}
			hasher.On("HashPassword", "pw").Return("hashed:pw", tc.hashErr).Maybe()
			svc := New(users, hasher, zap.NewNop())

			id, patch := tc.patch(alice, bob)
			u, err := svc.Update(context.Background(), id, patch)
			if tc.wantKind != "" {
				assert.True(t, errorbank.IsKind(err, tc.wantKind), err)
				return
			}
			require.NoError(t, err)
			tc.check(t, u)
			hasher.AssertExpectations(t)
		})
	}
}
