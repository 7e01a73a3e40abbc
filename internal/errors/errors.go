// Package errors provides coded domain errors for the Shelfboard service.
//
// Usage:
//
//	// In the data layer - wrap driver failures
//	if err != nil {
//	    return nil, errors.DataSourcef(err, "load table %q", name)
//	}
//
//	// In handlers - check with errors.Is against the sentinels
//	if errors.Is(err, errors.ErrDataSource) {
//	    // halt the render, surface the message
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidation      Code = "VALIDATION"
	CodeDataSource      Code = "DATA_SOURCE"
	CodeSchema          Code = "SCHEMA"
	CodeAIService       Code = "AI_SERVICE"
	CodeAINotConfigured Code = "AI_NOT_CONFIGURED"
	CodeNotConfigured   Code = "NOT_CONFIGURED"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeDataSource, CodeAINotConfigured, CodeNotConfigured:
		return http.StatusServiceUnavailable
	case CodeAIService:
		return http.StatusBadGateway
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDataSource      = &Error{Code: CodeDataSource, Message: "data source unavailable"}
	ErrSchema          = &Error{Code: CodeSchema, Message: "malformed table"}
	ErrAIService       = &Error{Code: CodeAIService, Message: "AI service failure"}
	ErrAINotConfigured = &Error{Code: CodeAINotConfigured, Message: "AI service is not configured"}
	ErrNotConfigured   = &Error{Code: CodeNotConfigured, Message: "not configured"}
	ErrRateLimited     = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// DataSourcef wraps a table fetch or connection failure.
func DataSourcef(err error, format string, args ...any) *Error {
	return &Error{Code: CodeDataSource, Message: fmt.Sprintf(format, args...), cause: err}
}

// Schemaf creates a schema error for a malformed row-set.
func Schemaf(format string, args ...any) *Error {
	return &Error{Code: CodeSchema, Message: fmt.Sprintf(format, args...)}
}

// AIService wraps a failed generative-search call.
func AIService(err error, msg string) *Error {
	return &Error{Code: CodeAIService, Message: msg, cause: err}
}

// NotConfigured creates an error for an optional integration that has no credentials.
func NotConfigured(msg string) *Error {
	return &Error{Code: CodeNotConfigured, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the Code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
