package data

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsupported marks an action the collaborator services do not offer.
// The phonebook service has no update or delete endpoint.
var ErrUnsupported = errors.New("not supported by the phonebook service")

// APIError is a non-2xx response from a collaborator.
type APIError struct {
	Service    Service
	Method     string
	Path       string
	Status     int
	StatusText string
	// Body is the response body read as text; empty when it could not be read.
	Body string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %d", e.Method, e.Path, e.Status)
	if e.StatusText != "" {
		msg += " " + e.StatusText
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += " " + body
	}
	return msg
}

// TransportError is a request that never produced an HTTP response:
// DNS failure, refused connection, timeout or cancellation.
type TransportError struct {
	Service Service
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error contacting %s service: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a 2xx response whose body does not have the expected shape.
type DecodeError struct {
	Service Service
	Path    string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response from %s %s: %v", e.Service, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsConflict reports whether err is a 409 from a collaborator.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
