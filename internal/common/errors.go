// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Common application errors.
var (
	// Session errors.
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Transport errors.
	ErrRequestFailed = errors.New("request failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

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

// RequestError is the generic transport failure. StatusCode is zero when no
// response was received at all.
type RequestError struct {
	Err        error
	Method     string
	Path       string
	Payload    []byte
	StatusCode int
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && len(e.Payload) > 0:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, truncate(string(e.Payload), 200))
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, ErrRequestFailed)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports ErrRequestFailed for every request error and ErrSessionExpired
// for 401 responses.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrSessionExpired:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// AuthError is returned when the backend rejects a login or registration.
type AuthError struct {
	Err     error
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports input rejected before any network call is made.
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

// UploadError reports a failed receipt submission. Message is safe to show.
type UploadError struct {
	Err     error
	Message string
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ConsultationError reports a failed free-text consultation.
type ConsultationError struct {
	Err error
}

func (e *ConsultationError) Error() string {
	return fmt.Sprintf("consultation failed: %v", e.Err)
}

func (e *ConsultationError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 0 || reqErr.StatusCode >= http.StatusInternalServerError
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
