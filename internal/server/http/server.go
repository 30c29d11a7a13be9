package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/observability"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/presentation/http/response"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/transport/http/middleware"
	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

const healthTimeout = 2 * time.Second

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho),
	fx.Invoke(Run),
)

// Params groups the router dependencies. Database is optional so the router can be
// built without storage in tests.
type Params struct {
	fx.In

	Config        config.Config
	Observability *observability.Manager `optional:"true"`
	Database      *database.Connections  `optional:"true"`
	Logger        *zap.Logger
}

// NewEcho configures the Echo router with the shared middleware chain.
func NewEcho(p Params) *echo.Echo {
	cfg, logger := p.Config, p.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(echomw.RequestID())
	if p.Observability != nil && p.Observability.TracingEnabled() {
		e.Use(otelecho.Middleware(cfg.Observability.ServiceName))
	}
	e.Use(requestLogger(logger))
	if len(cfg.HTTP.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	if cfg.HTTP.RateLimit.Enabled {
		e.Use(middleware.RateLimit(cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst,
			"Too many requests, please try again later."))
	}

	e.GET("/health", health(p.Database))

	if p.Observability != nil && p.Observability.MetricsEnabled() && p.Observability.MetricsHandler() != nil {
		e.GET(cfg.Observability.PrometheusPath, echo.WrapHandler(p.Observability.MetricsHandler()))
	}

	return e
}

// requestLogger logs one line per request and exposes a request scoped logger
// to the response builder.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqLogger := logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			c.Set(response.LoggerKey, reqLogger)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			switch status := c.Response().Status; {
			case status >= http.StatusInternalServerError:
				reqLogger.Error("http request", fields...)
			case status >= http.StatusBadRequest:
				reqLogger.Info("http request", fields...)
			default:
				reqLogger.Debug("http request", fields...)
			}
			return nil
		}
	}
}

// errorHandler renders errors that escape handlers (routing misses, binder
// failures) in the same body shape as handler errors.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			kind := errorbank.KindInternal
			switch he.Code {
			case http.StatusBadRequest:
				kind = errorbank.KindBadRequest
			case http.StatusUnauthorized:
				kind = errorbank.KindUnauthorized
			case http.StatusForbidden:
				kind = errorbank.KindForbidden
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				kind = errorbank.KindNotFound
			case http.StatusTooManyRequests:
				kind = errorbank.KindTooMany
			}
			message := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
				message = m
			}
			if he.Code >= http.StatusInternalServerError {
				logger.Error("http request failed", zap.Error(err))
			}
			_ = c.JSON(he.Code, response.ErrorBody{Message: message, Kind: string(kind)})
			return
		}
		_ = response.New(c).WithError(err).Build()
	}
}

func health(conns *database.Connections) echo.HandlerFunc {
	return func(c echo.Context) error {
		if conns == nil {
			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		if err := conns.Writer.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
