package admin

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
)

// Module wires HTTP admin handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
		Register(e, h, tokens)
	}),
)
