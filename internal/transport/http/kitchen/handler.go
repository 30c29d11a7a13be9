package kitchen

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	menuservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/menu"
	orderservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/kitchen")

// Handler exposes the kitchen board: active orders, status changes and
// menu availability.
type Handler struct {
	orders *orderservice.Service
	menu   *menuservice.Service
}

// NewHandler constructs a kitchen Handler.
func NewHandler(orders *orderservice.Service, menu *menuservice.Service) *Handler {
	return &Handler{orders: orders, menu: menu}
}

// Register routes with provided Echo instance. Every route requires the kitchen role.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/kitchen", auth.Authenticate(tokens), auth.RequireRole(entity.RoleKitchen))
	g.GET("/orders", h.listActive)
	g.GET("/", h.listActive)
	g.GET("/orders/:id/history", h.history)
	g.PATCH("/orders/:id/status", h.setStatus)
	g.PATCH("/:id/status", h.setStatus)
	g.PATCH("/orders/:id/cancel", h.cancel)
	g.PATCH("/:id/cancel", h.cancel)
	g.PATCH("/menu-items/:id/availability", h.setAvailability)
}

func (h *Handler) listActive(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "kitchen.listActive")
	defer span.End()

	orders, err := h.orders.ListActiveForKitchen(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrders(orders)).Build()
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload statusRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "kitchen.setStatus")
	span.SetAttributes(attribute.Int64("order.id", id), attribute.String("order.status", payload.Status))
	defer span.End()

	order, err := h.orders.SetStatus(ctx, id, payload.Status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.OrderStatusResponse{OrderID: order.ID, Status: order.Status}).Build()
}

func (h *Handler) cancel(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "kitchen.cancel")
	span.SetAttributes(attribute.Int64("order.id", id))
	defer span.End()

	order, err := h.orders.Cancel(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.OrderStatusResponse{OrderID: order.ID, Status: order.Status}).Build()
}

func (h *Handler) history(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "kitchen.history")
	span.SetAttributes(attribute.Int64("order.id", id))
	defer span.End()

	entries, err := h.orders.History(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromStatusLog(entries)).Build()
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

func (h *Handler) setAvailability(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload availabilityRequest
	if err := request.Bind(c, &payload); err != nil || payload.Available == nil {
		return b.WithError(errorbank.BadRequest("`available` must be boolean", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "kitchen.setAvailability")
	span.SetAttributes(attribute.Int64("menu_item.id", id), attribute.Bool("menu_item.available", *payload.Available))
	defer span.End()

	item, err := h.menu.SetAvailability(ctx, id, *payload.Available)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.AvailabilityResponse{ID: item.ID, Available: item.Available}).Build()
}
