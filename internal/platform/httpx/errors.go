package httpx

import (
	"errors"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// PublicError pairs an error kind with a message that is safe to show callers.
type PublicError struct {
	Kind    error
	Message string
}

// NewError returns an error of the given kind whose message reaches the client.
func NewError(kind error, message string) error {
	return &PublicError{Kind: kind, Message: message}
}

func (e *PublicError) Error() string { return e.Message }

func (e *PublicError) Unwrap() error { return e.Kind }

// ValidationError reports field level input failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FromError maps an error returned past the middleware chain onto the envelope.
// Messages come from PublicError or a fixed default; err.Error() is never echoed.
func FromError(err error) *Response {
	if err == nil {
		return ServerError("")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return ValidationFailed(verr.Fields)
	}
	message := ""
	var perr *PublicError
	if errors.As(err, &perr) {
		message = perr.Message
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrNotFound):
		return NotFound(message)
	case errors.Is(err, ErrConflict):
		if message == "" {
			message = "Resource conflict"
		}
		return Conflict(message)
	case errors.Is(err, ErrValidation):
		return Error(CodeValidation, "Validation failed", nil)
	case errors.Is(err, ErrBadRequest):
		if message == "" {
			message = "Bad request"
		}
		return BadRequest(message, nil)
	case errors.Is(err, ErrForbidden):
		return Forbidden(message)
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized(message)
	default:
		return ServerError("")
	}
}
