package errors

import (
	"fmt"
	"net/http"
)

// Machine-readable error kinds returned in response bodies.
const (
	KindValidation        = "VALIDATION"
	KindNotFound          = "NOT_FOUND"
	KindInsufficientStock = "INSUFFICIENT_STOCK"
	KindAuthorization     = "AUTHORIZATION"
	KindUnauthorized      = "UNAUTHORIZED"
	KindConflict          = "CONFLICT"
	KindUpstream          = "UPSTREAM"
)

// Error represents an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

// NotFound reports an absent referenced entity.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

// InsufficientStock reports a requested quantity exceeding available stock.
// Maps to 400, same as validation failures.
func InsufficientStock(message string) *Error {
	return New(http.StatusBadRequest, KindInsufficientStock, message, nil)
}

// Forbidden reports an actor lacking rights over the target entity.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, KindAuthorization, message, nil)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, KindUnauthorized, message, nil)
}

// Conflict reports a uniqueness violation such as a duplicate review.
func Conflict(message string) *Error {
	return New(http.StatusConflict, KindConflict, message, nil)
}

// Upstream wraps a store or notifier failure.
func Upstream(message string, err error) *Error {
	return New(http.StatusInternalServerError, KindUpstream, message, err)
}
