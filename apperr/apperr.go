// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the error taxonomy shared by services and handlers.
// Errors are wrapped with fmt.Errorf and matched with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuth            = errors.New("authentication required")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrResponseParse   = errors.New("model response invalid")
	ErrPersistence     = errors.New("persistence failure")
)

// Validation returns an ErrValidation carrying a caller-facing message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing resource.
func NotFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// Persistence wraps a storage error.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// HTTPStatus maps an error onto a response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text safe to return to a client. Internal failures are
// reduced to a generic message.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal error"
	}
	return err.Error()
}
