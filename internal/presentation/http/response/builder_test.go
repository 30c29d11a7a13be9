package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return echo.New().NewContext(req, rec), rec
}

func TestBuilder(t *testing.T) {
	testCases := map[string]struct {
		build      func(*Builder) *Builder
		wantStatus int
		wantBody   string
	}{
		"bare success payload": {
			build:      func(b *Builder) *Builder { return b.WithData(map[string]any{"orderId": 1}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"orderId":1}`,
		},
		"custom success status": {
			build:      func(b *Builder) *Builder { return b.WithStatus(http.StatusCreated).WithData([]int{1, 2}) },
			wantStatus: http.StatusCreated,
			wantBody:   `[1,2]`,
		},
		"not found error": {
			build:      func(b *Builder) *Builder { return b.WithError(errorbank.NotFound("Order not found")) },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Order not found","kind":"not_found"}`,
		},
		"error details": {
			build: func(b *Builder) *Builder {
				return b.WithError(errorbank.BadRequest("Invalid status", errorbank.WithDetail("status", "bogus")))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Invalid status","kind":"bad_request","details":{"status":"bogus"}}`,
		},
		"unknown error hides cause": {
			build:      func(b *Builder) *Builder { return b.WithError(errors.New("pq: connection refused")) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"internal error","kind":"internal"}`,
		},
		"forbidden": {
			build:      func(b *Builder) *Builder { return b.WithError(errorbank.Forbidden("Forbidden: kitchen only")) },
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"Forbidden: kitchen only","kind":"forbidden"}`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext()

			require.NoError(t, tc.build(New(c)).Build())
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestBuilder_NoContent(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithStatus(http.StatusNoContent).Build())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBuilder_LogsInternalCause(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c, _ := newContext()
	c.Set(LoggerKey, zap.New(core))

	require.NoError(t, New(c).WithError(errorbank.Internal("Server error", errorbank.WithCause(errors.New("boom")))).Build())
	require.NoError(t, New(c).WithError(errorbank.BadRequest("nope")).Build())

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}
