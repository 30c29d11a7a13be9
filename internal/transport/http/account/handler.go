package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/auth"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/dto"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/request"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	service "github.com/AndersBondeLudvigsen/FoodOrdering/internal/service/account"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/middleware"
)

var httpTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/transport/http/account")

// Handler exposes sign-up, login and password change under /auth.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an account Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens, cfg config.Config) {
	var limit []echo.MiddlewareFunc
	if cfg.HTTP.RateLimit.Enabled {
		limit = append(limit, middleware.RateLimit(cfg.HTTP.RateLimit.AuthRPS, cfg.HTTP.RateLimit.Burst,
			"Too many authentication attempts from this IP, please try again later."))
	}
	g := e.Group("/auth", limit...)
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.PATCH("/change-password", h.changePassword, auth.Authenticate(tokens))
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(c echo.Context) error {
	b := response.New(c)

	var payload signupRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.signup")
	defer span.End()

	if _, err := h.svc.Signup(ctx, payload.Username, payload.Email, payload.Password); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.MessageResponse{Message: "User created"}).Build()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload loginRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	session, err := h.svc.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.LoginResponse{Token: session.Token, Role: session.Role}).Build()
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) changePassword(c echo.Context) error {
	b := response.New(c)
	id, err := auth.Caller(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload changePasswordRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.changePassword")
	defer span.End()

	if err := h.svc.ChangePassword(ctx, id.UserID, payload.OldPassword, payload.NewPassword); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.MessageResponse{Message: "Password updated"}).Build()
}
