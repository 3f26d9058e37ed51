package api

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "Request failed"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized reports whether the server rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ErrTransport wraps failures below HTTP: DNS, refused connections, broken
// bodies.
type ErrTransport struct {
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates a 2xx body that does not match the
// expected shape.
type ErrInvalidResponse struct {
	Endpoint string
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show a learner for err. Server messages are
// passed through; anything else gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// messageFrom picks the server's message, then its error field.
func messageFrom(body map[string]any) string {
	if m, ok := body["message"].(string); ok && m != "" {
		return m
	}
	if m, ok := body["error"].(string); ok && m != "" {
		return m
	}
	return DefaultErrorMessage
}
