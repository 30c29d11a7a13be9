package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/pkg/errorbank"
)

// LoggerKey is the echo context key under which the request logger is stored.
const LoggerKey = "response.logger"

// Builder helps construct consistent HTTP responses.
// Successful payloads are written as-is; errors as {message, kind, details}.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string         `json:"message"`
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	if b.data == nil {
		return b.ctx.NoContent(b.status)
	}
	return b.ctx.JSON(b.status, b.data)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	if appErr.Kind() == errorbank.KindInternal {
		if logger, ok := b.ctx.Get(LoggerKey).(*zap.Logger); ok && logger != nil {
			logger.Error("request failed",
				zap.String("method", b.ctx.Request().Method),
				zap.String("path", b.ctx.Path()),
				zap.Error(appErr.Unwrap()),
			)
		}
	}
	return b.ctx.JSON(status, ErrorBody{
		Message: appErr.Message(),
		Kind:    string(appErr.Kind()),
		Details: appErr.Details(),
	})
}
