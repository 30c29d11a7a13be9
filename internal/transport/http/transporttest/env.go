// Package transporttest assembles handlers over an in-memory database for HTTP tests.
package transporttest

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database/dbtest"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime/realtimetest"
)

// Env bundles what a handler test needs.
type Env struct {
	Echo     *echo.Echo
	Conns    *database.Connections
	Config   config.Config
	Tokens   *auth.Tokens
	Recorder *realtimetest.Recorder
}

// New builds an Env with a fresh database.
func New(t testing.TB) *Env {
	t.Helper()
	cfg := config.Config{
		Auth:     config.Auth{JWTSecret: "test-secret", Issuer: "foodordering", TokenTTL: time.Hour, BcryptCost: 4},
		Cache:    config.Cache{Driver: "noop", DefaultTTL: time.Minute},
		Realtime: config.Realtime{SendBuffer: 16, WriteTimeout: time.Second, PingInterval: time.Minute},
	}
	e := echo.New()
	e.HideBanner = true
	return &Env{
		Echo:     e,
		Conns:    dbtest.New(t),
		Config:   cfg,
		Tokens:   auth.NewTokens(cfg),
		Recorder: &realtimetest.Recorder{},
	}
}

// Token issues a bearer header value for the given identity.
func (e *Env) Token(t testing.TB, userID int64, role entity.Role) string {
	t.Helper()
	raw, err := e.Tokens.Issue(&entity.User{ID: userID, Username: "user", Role: role})
	require.NoError(t, err)
	return "Bearer " + raw
}

// Do serves one request and returns the recorded response.
func (e *Env) Do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, bearer)
	}
	rec := httptest.NewRecorder()
	e.Echo.ServeHTTP(rec, req)
	return rec
}
