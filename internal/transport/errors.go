package transport

import (
	"fmt"
	"net/http"
)

// NetworkError means the request never reached the backend or no response
// came back.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// APIError means the backend answered, but with a non-success HTTP status, a
// failure status inside the envelope, or a body that could not be decoded.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Malformed  bool
	Cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Malformed {
		return fmt.Sprintf("%s %s: malformed response (status=%d): %v", e.Method, e.Path, e.StatusCode, e.Cause)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: api error status=%d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ClientError reports whether the backend rejected the request itself
// (4xx) rather than failing.
func (e *APIError) ClientError() bool {
	return e != nil && !e.Malformed && e.StatusCode >= 400 && e.StatusCode < 500
}
