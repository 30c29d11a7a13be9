package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

func TestPathID(t *testing.T) {
	testCases := map[string]struct {
		raw     string
		want    int64
		wantErr bool
	}{
		"positive": {raw: "42", want: 42},
		"zero":     {raw: "0", wantErr: true},
		"negative": {raw: "-1", wantErr: true},
		"text":     {raw: "abc", wantErr: true},
		"empty":    {raw: "", wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.SetParamNames("id")
			c.SetParamValues(tc.raw)

			got, err := PathID(c, "id")
			if tc.wantErr {
				assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBind(t *testing.T) {
	newCtx := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	var ok struct {
		Available *bool `json:"available"`
	}
	require.NoError(t, Bind(newCtx(`{"available":false}`), &ok))
	require.NotNil(t, ok.Available)
	assert.False(t, *ok.Available)

	var bad struct {
		Available *bool `json:"available"`
	}
	err := Bind(newCtx(`{"available":"yes"}`), &bad)
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}
