package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

const testSecret = "test-secret"

func newTestTokens(now time.Time) *Tokens {
	tokens := NewTokens(config.Config{Auth: config.Auth{JWTSecret: testSecret, Issuer: "foodordering", TokenTTL: time.Hour}})
	tokens.now = func() time.Time { return now }
	return tokens
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestTokens_IssueAndVerify(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(now)

	raw, err := tokens.Issue(&entity.User{ID: 42, Username: "alice", Role: entity.RoleCustomer})
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.Equal(t, "foodordering", claims.Issuer)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokens_Verify(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(now)
	valid := func(mutate func(*Claims)) Claims {
		c := Claims{
			UserID:   7,
			Username: "chef",
			Role:     entity.RoleKitchen,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "foodordering",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		if mutate != nil {
			mutate(&c)
		}
		return c
	}

	testCases := map[string]struct {
		raw     string
		wantErr bool
	}{
		"should accept valid token": {
			raw: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(nil)),
		},
		"should reject expired token": {
			raw: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) {
				c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			})),
			wantErr: true,
		},
		"should reject token without expiry": {
			raw:     signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.ExpiresAt = nil })),
			wantErr: true,
		},
		"should reject wrong secret": {
			raw:     signClaims(t, jwt.SigningMethodHS256, []byte("other"), valid(nil)),
			wantErr: true,
		},
		"should reject wrong issuer": {
			raw:     signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.Issuer = "evil" })),
			wantErr: true,
		},
		"should reject other algorithm": {
			raw:     signClaims(t, jwt.SigningMethodHS512, []byte(testSecret), valid(nil)),
			wantErr: true,
		},
		"should reject unknown role": {
			raw:     signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.Role = "chef" })),
			wantErr: true,
		},
		"should reject missing user id": {
			raw:     signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.UserID = 0 })),
			wantErr: true,
		},
		"should reject garbage": {
			raw:     "not-a-token",
			wantErr: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			claims, err := tokens.Verify(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}
