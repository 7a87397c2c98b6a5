package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AuthError reports that the backend rejected our session or token.
// It is terminal for the caller: automatic retries must stop until the
// user re-authenticates.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed (http %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authentication failed (http %d)", e.StatusCode)
}

// IsAuthError reports whether err is (or wraps) an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// RequestError carries the HTTP status and the backend's error payload
// for a failed non-auth request.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	code := strings.TrimSpace(e.Code)
	message := strings.TrimSpace(e.Message)
	switch {
	case code != "" && message != "":
		return fmt.Sprintf("%s: %s", code, message)
	case message != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, message)
	case code != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, code)
	default:
		return fmt.Sprintf("http %d", e.StatusCode)
	}
}

// Retryable reports whether the request may succeed if repeated
func (e *RequestError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}
