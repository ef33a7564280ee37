package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrInvalidCredentials, fmt.Errorf("bcrypt mismatch"))

	if !errors.Is(wrapped, ErrInvalidCredentials) {
		t.Error("Expected wrapped error to match its sentinel")
	}
	if errors.Is(wrapped, ErrAccountLocked) {
		t.Error("Expected no match across different codes")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := WrapError(ErrInternal, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("Expected errors.Is to reach the underlying cause")
	}
}

func TestUniformCredentialMessages(t *testing.T) {
	// Locked and invalid must be indistinguishable to the caller
	if ErrAccountLocked.Message != ErrInvalidCredentials.Message {
		t.Errorf("Expected identical messages, got %q vs %q",
			ErrAccountLocked.Message, ErrInvalidCredentials.Message)
	}
	if ErrAccountLocked.Code == ErrInvalidCredentials.Code {
		t.Error("Expected distinct codes for internal bookkeeping")
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrAccountLocked, http.StatusUnauthorized},
		{ErrInvalidRefreshToken, http.StatusUnauthorized},
		{ErrIncorrectPassword, http.StatusUnauthorized},
		{ErrResetTokenInvalid, http.StatusBadRequest},
		{ErrPasswordMismatch, http.StatusBadRequest},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrEmailExists, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{ErrServiceUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := ToHTTPStatus(tc.err); got != tc.status {
			t.Errorf("ToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestGetErrorMessage(t *testing.T) {
	wrapped := WrapError(ErrInternal, fmt.Errorf("pq: connection reset"))

	// The wrapped cause must not leak into the user-facing message
	if msg := GetErrorMessage(wrapped); msg != "internal server error" {
		t.Errorf("Expected sanitized message, got %q", msg)
	}
}
