package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never produced an HTTP response:
// connection refused, DNS failure, timeout, cancelled context.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to connect: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned when the server answered with an unexpected status.
// Message holds the server-provided "message" or "error" field when present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodeError means a response body did not match the wire schema.
type DecodeError struct {
	What   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode " + e.What + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err carries a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// IsTransport reports whether err means the server could not be reached.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
