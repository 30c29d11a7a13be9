package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	menuservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/menu"
	userservice "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/user"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/admin")

// Handler exposes menu catalog and user administration.
type Handler struct {
	menu  *menuservice.Service
	users *userservice.Service
}

// NewHandler constructs an admin Handler.
func NewHandler(menu *menuservice.Service, users *userservice.Service) *Handler {
	return &Handler{menu: menu, users: users}
}

// Register routes with provided Echo instance. Every route requires the admin role.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/admin", auth.Authenticate(tokens), auth.RequireRole(entity.RoleAdmin))
	g.GET("/menu-items", h.listMenuItems)
	g.POST("/menu-items", h.createMenuItem)
	g.PATCH("/menu-items/:id", h.updateMenuItem)
	g.DELETE("/menu-items/:id", h.deleteMenuItem)
	g.GET("/users", h.listUsers)
	g.PATCH("/users/:id", h.updateUser)
}

type menuItemRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
	Available   *bool    `json:"available"`
	Ingredients []string `json:"ingredients"`
}

func (r menuItemRequest) input() menuservice.Input {
	return menuservice.Input{
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Available:   r.Available,
		Ingredients: r.Ingredients,
	}
}

func (h *Handler) listMenuItems(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.listMenuItems")
	defer span.End()

	items, err := h.menu.ListForAdmin(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(items).Build()
}

func (h *Handler) createMenuItem(c echo.Context) error {
	b := response.New(c)

	var payload menuItemRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.createMenuItem")
	span.SetAttributes(attribute.String("menu_item.name", payload.Name))
	defer span.End()

	id, err := h.menu.Create(ctx, payload.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.MenuItemCreatedResponse{MenuItemID: id}).Build()
}

func (h *Handler) updateMenuItem(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload menuItemRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.updateMenuItem")
	span.SetAttributes(attribute.Int64("menu_item.id", id))
	defer span.End()

	if err := h.menu.Update(ctx, id, payload.input()); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "Updated"}).Build()
}

func (h *Handler) deleteMenuItem(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.deleteMenuItem")
	span.SetAttributes(attribute.Int64("menu_item.id", id))
	defer span.End()

	if err := h.menu.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "Deleted"}).Build()
}

func (h *Handler) listUsers(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.listUsers")
	defer span.End()

	users, err := h.users.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromUsers(users)).Build()
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *Handler) updateUser(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload userRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "admin.updateUser")
	span.SetAttributes(attribute.Int64("user.id", id))
	defer span.End()

	u, err := h.users.Update(ctx, id, userservice.Patch{
		Username: payload.Username,
		Email:    payload.Email,
		Role:     payload.Role,
		Password: payload.Password,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromUser(u)).Build()
}
