package favorite

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	service "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/favorite"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/favorite")

// Handler exposes the caller's starred menu items.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a favorites Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/favorites", auth.Authenticate(tokens))
	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("/:menuItemId", h.remove)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "favorites.list")
	defer span.End()

	items, err := h.svc.List(ctx, id.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromFavorites(items)).Build()
}

type addRequest struct {
	MenuItemID int64 `json:"menuItemId"`
}

func (h *Handler) add(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload addRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "favorites.add")
	span.SetAttributes(attribute.Int64("menu_item.id", payload.MenuItemID))
	defer span.End()

	if err := h.svc.Add(ctx, id.UserID, payload.MenuItemID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(map[string]bool{"success": true}).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	menuItemID, err := request.PathID(c, "menuItemId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "favorites.remove")
	span.SetAttributes(attribute.Int64("menu_item.id", menuItemID))
	defer span.End()

	if err := h.svc.Remove(ctx, id.UserID, menuItemID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]bool{"success": true}).Build()
}
