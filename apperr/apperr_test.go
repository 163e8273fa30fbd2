// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth", ErrAuth, http.StatusUnauthorized},
		{"access denied", fmt.Errorf("get task: %w", ErrAccessDenied), http.StatusForbidden},
		{"not found", NotFound("session"), http.StatusNotFound},
		{"validation", Validation("session %s is not complete", "abc"), http.StatusBadRequest},
		{"persistence", Persistence("insert task", errors.New("disk full")), http.StatusInternalServerError},
		{"model", ErrModelInvocation, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := Validation("value is required")
	if got := Message(err); got != "validation failed: value is required" {
		t.Errorf("unexpected message %q", got)
	}

	internal := Persistence("update session", errors.New("connection reset"))
	if got := Message(internal); got != "Internal error" {
		t.Errorf("internal details leaked: %q", got)
	}
}
