package account

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	userrepo "github.com/AndersBondeLudvigsen/FoodOrdering/internal/repository/user"
	service "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/account"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/transporttest"
)

func newEnv(t *testing.T) *transporttest.Env {
	t.Helper()
	env := transporttest.New(t)
	svc := service.NewService(service.Params{
		Repository: userrepo.NewRepository(env.Conns),
		Tokens:     env.Tokens,
		Config:     env.Config,
		Logger:     zap.NewNop(),
	})
	Register(env.Echo, NewHandler(svc), env.Tokens, env.Config)
	return env
}

func TestHandler_SignupLoginChangePassword(t *testing.T) {
	env := newEnv(t)

	rec := env.Do(http.MethodPost, "/auth/signup", "", `{"username":"alice","email":"alice@example.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"User created"}`, rec.Body.String())

	rec = env.Do(http.MethodPost, "/auth/signup", "", `{"username":"alice2","email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.Do(http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "customer", session.Role)
	claims, err := env.Tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, claims.Role)

	bearer := "Bearer " + session.Token
	rec = env.Do(http.MethodPatch, "/auth/change-password", bearer, `{"oldPassword":"nope","newPassword":"pw2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.Do(http.MethodPatch, "/auth/change-password", bearer, `{"oldPassword":"pw1","newPassword":"pw2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password updated"}`, rec.Body.String())

	rec = env.Do(http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"pw2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	env := newEnv(t)

	testCases := map[string]struct {
		method, path, body string
		wantStatus         int
		wantBody           string
	}{
		"signup missing fields": {
			method: http.MethodPost, path: "/auth/signup", body: `{"email":"a@b.c"}`,
			wantStatus: http.StatusBadRequest, wantBody: `{"message":"Missing fields","kind":"bad_request"}`,
		},
		"login unknown user": {
			method: http.MethodPost, path: "/auth/login", body: `{"email":"x@y.z","password":"pw"}`,
			wantStatus: http.StatusBadRequest, wantBody: `{"message":"Invalid credentials","kind":"bad_request"}`,
		},
		"change password anonymous": {
			method: http.MethodPatch, path: "/auth/change-password", body: `{"oldPassword":"a","newPassword":"b"}`,
			wantStatus: http.StatusUnauthorized, wantBody: `{"message":"Not authenticated","kind":"unauthorized"}`,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rec := env.Do(tc.method, tc.path, "", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}
