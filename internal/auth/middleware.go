package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

const (
	bearerPrefix = "bearer"
	identityKey  = "auth.identity"
)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// Identity is the verified caller attached to a request.
type Identity struct {
	UserID   int64
	Username string
	Role     entity.Role
}

// IdentityOf returns the identity of verified claims.
func IdentityOf(c *Claims) Identity {
	return Identity{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller identity on the echo context.
func Authenticate(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := ExtractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("Not authenticated", errorbank.WithCause(err))).Build()
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("Invalid or expired token", errorbank.WithCause(err))).Build()
			}
			c.Set(identityKey, IdentityOf(claims))
			return next(c)
		}
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after Authenticate.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	message := "Forbidden: " + strings.Join(names, " or ") + " only"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := Caller(c)
			if err != nil {
				return response.New(c).WithError(err).Build()
			}
			for _, r := range roles {
				if id.Role == r {
					return next(c)
				}
			}
			return response.New(c).WithError(errorbank.Forbidden(message)).Build()
		}
	}
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// Caller returns the identity stored by Authenticate, or an unauthorized
// error when the route is not behind it.
func Caller(c echo.Context) (Identity, error) {
	id, ok := IdentityFrom(c)
	if !ok {
		return Identity{}, errorbank.Unauthorized("Not authenticated")
	}
	return id, nil
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header value.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}
