// Package apierrors defines the service-wide error taxonomy. Services attach
// a Code to every failure they surface; the HTTP layer owns the translation to
// status codes so business code never imports net/http.
package apierrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for API consumers.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeDuplicateEntry     Code = "duplicate_entry"
	CodeAuthInvalid        Code = "auth_invalid"
	CodeNotFound           Code = "not_found"
	CodeRateLimited        Code = "rate_limited"
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeInternal           Code = "internal_error"
)

// Error is the concrete error type carried across service boundaries. Message
// is user-facing and must never contain credentials, hashes, or stack traces.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is makes errors.Is compare by value so sentinel errors constructed in
// different packages still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// New builds an Error with the given code and user-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate from this package.
func CodeOf(err error) Code {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message, falling back to a generic one
// so unexpected errors never leak internals to clients.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal server error"
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeDuplicateEntry:
		return http.StatusBadRequest
	case CodeAuthInvalid:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
