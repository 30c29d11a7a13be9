package account

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
)

// Module wires HTTP account handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, tokens *auth.Tokens, cfg config.Config) {
		Register(e, h, tokens, cfg)
	}),
)
