// Package middleware holds echo middleware shared by the HTTP handlers.
package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

// RateLimit throttles requests per client IP. A non-positive rps disables it.
func RateLimit(rps float64, burst int, message string) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst <= 0 {
		burst = int(rps) + 1
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(rps),
		Burst: burst,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return response.New(c).WithError(errorbank.Forbidden("Unable to identify client", errorbank.WithCause(err))).Build()
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return response.New(c).WithError(errorbank.TooManyRequests(message)).Build()
		},
	})
}
