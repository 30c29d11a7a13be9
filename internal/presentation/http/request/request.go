// Package request holds helpers for decoding inbound HTTP requests.
package request

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

// PathID parses a positive integer path parameter.
func PathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithDetail(name, raw))
	}
	return id, nil
}

// Bind decodes the request body into dst, reporting failures as bad requests.
func Bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return nil
}
