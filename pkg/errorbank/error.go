// Package errorbank defines the application error type shared by the HTTP and
// gRPC transports.
package errorbank

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind enumerates supported application error categories.
type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindTooMany      Kind = "too_many_requests"
	KindInternal     Kind = "internal"
)

type mapping struct {
	status int
	code   codes.Code
}

var kinds = map[Kind]mapping{
	KindBadRequest:   {status: http.StatusBadRequest, code: codes.InvalidArgument},
	KindUnauthorized: {status: http.StatusUnauthorized, code: codes.Unauthenticated},
	KindForbidden:    {status: http.StatusForbidden, code: codes.PermissionDenied},
	KindConflict:     {status: http.StatusConflict, code: codes.AlreadyExists},
	KindNotFound:     {status: http.StatusNotFound, code: codes.NotFound},
	KindTooMany:      {status: http.StatusTooManyRequests, code: codes.ResourceExhausted},
	KindInternal:     {status: http.StatusInternalServerError, code: codes.Internal},
}

// AppError is a classified error with a client safe message. The cause is
// kept for logs and errors.Is, never rendered.
type AppError struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

// Option mutates an AppError during construction.
type Option func(*AppError)

// WithCause attaches an underlying error.
func WithCause(err error) Option {
	return func(e *AppError) { e.cause = err }
}

// WithDetail adds a single named detail value.
func WithDetail(key string, value any) Option {
	return func(e *AppError) {
		if e.details == nil {
			e.details = make(map[string]any)
		}
		e.details[key] = value
	}
}

// New constructs an AppError. An empty message falls back to the kind name.
func New(kind Kind, message string, opts ...Option) *AppError {
	if message == "" {
		message = string(kind)
	}
	e := &AppError{kind: kind, message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Kind returns the error category; nil errors count as internal.
func (e *AppError) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Message returns the client facing message.
func (e *AppError) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Details returns optional metadata about the error.
func (e *AppError) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

// StatusCode resolves the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	return lookup(e.Kind()).status
}

// GRPCCode maps the error kind onto a gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	return lookup(e.Kind()).code
}

func lookup(k Kind) mapping {
	if m, ok := kinds[k]; ok {
		return m
	}
	return kinds[KindInternal]
}

// BadRequest is for invalid input.
func BadRequest(message string, opts ...Option) *AppError {
	return New(KindBadRequest, message, opts...)
}

// Unauthorized is for missing or invalid credentials.
func Unauthorized(message string, opts ...Option) *AppError {
	return New(KindUnauthorized, message, opts...)
}

// Forbidden is for authenticated callers lacking a role.
func Forbidden(message string, opts ...Option) *AppError {
	return New(KindForbidden, message, opts...)
}

// Conflict is for uniqueness violations.
func Conflict(message string, opts ...Option) *AppError {
	return New(KindConflict, message, opts...)
}

// NotFound is for unknown resources.
func NotFound(message string, opts ...Option) *AppError {
	return New(KindNotFound, message, opts...)
}

// TooManyRequests is for callers over their rate limit.
func TooManyRequests(message string, opts ...Option) *AppError {
	return New(KindTooMany, message, opts...)
}

// Internal is for failures the caller cannot fix.
func Internal(message string, opts ...Option) *AppError {
	return New(KindInternal, message, opts...)
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *AppError
	return errors.As(err, &e) && e.kind == kind
}

// From returns the AppError in err's chain, or wraps err as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var e *AppError
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", WithCause(err))
}
