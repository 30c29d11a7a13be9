package order

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	service "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/order"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/order")

// Handler exposes customer order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/orders", auth.Authenticate(tokens))
	g.POST("", h.create)
	g.GET("", h.list)
}

type createRequest struct {
	Items []service.LineItem `json:"items"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload createRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(attribute.Int64("order.user_id", id.UserID), attribute.Int("order.items", len(payload.Items)))
	defer span.End()

	order, err := h.svc.Create(ctx, id.UserID, payload.Items)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.OrderCreatedResponse{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
	}).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	span.SetAttributes(attribute.Int64("order.user_id", id.UserID))
	defer span.End()

	orders, err := h.svc.ListForCustomer(ctx, id.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrders(orders)).Build()
}
