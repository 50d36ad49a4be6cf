// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every typed error below unwraps to exactly one of these so
// callers can branch with errors.Is.
var (
	// ErrValidation is a client-detected input problem; no request was sent.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication is a rejected sign-in or sign-up.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization means the session is no longer accepted by the backend.
	ErrAuthorization = errors.New("session no longer valid")
	// ErrTransient is any other network or backend failure.
	ErrTransient = errors.New("request failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports an invalid field before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthenticationError carries the backend's human-readable rejection.
type AuthenticationError struct {
	Message string
	Status  int
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// AuthorizationError is returned when an authorized endpoint rejects the token.
type AuthorizationError struct {
	Detail string
	Status int
}

func (e *AuthorizationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unauthorized (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("unauthorized (%d)", e.Status)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrAuthorization
}

// TransientRequestError wraps any non-auth failure of a list, create or delete.
type TransientRequestError struct {
	Err    error
	Op     string
	Detail string
	Status int
}

func (e *TransientRequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

// Unwrap exposes both the kind and the underlying cause.
func (e *TransientRequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransient, e.Err}
	}
	return []error{ErrTransient}
}

// IsUnauthorizedStatus reports whether an HTTP status means the token was
// refused. A missing or empty bearer credential is answered with 403.
func IsUnauthorizedStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Message returns the text a user should see for err: the backend message for
// authentication failures, the field message for validation failures, and the
// fallback otherwise.
func Message(err error, fallback string) string {
	var authn *AuthenticationError
	if errors.As(err, &authn) && authn.Message != "" {
		return authn.Message
	}
	var valid *ValidationError
	if errors.As(err, &valid) && valid.Message != "" {
		return valid.Message
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return fallback
}

// IsRetryable reports whether err is a transport or server failure worth
// another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, context.Canceled) {
		return false
	}

	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}
