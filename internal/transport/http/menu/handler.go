package menu

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	service "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/menu"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/menu")

// Handler exposes the public menu.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a menu Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/menu")
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.list")
	defer span.End()

	items, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(items).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "menu.get")
	span.SetAttributes(attribute.Int64("menu_item.id", id))
	defer span.End()

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(item).Build()
}
