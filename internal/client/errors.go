// internal/client/errors.go
package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TransportError means no response was obtained for URL.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a response outside the 2xx range.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %s", e.URL, e.Status)
	}
	return fmt.Sprintf("%s returned %s: %q", e.URL, e.Status, truncate(e.Body, 200))
}

// DeserializationError is a body that does not decode into the requested
// shape.
type DeserializationError struct {
	Type string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Type, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// DecodeJSON unmarshals raw into T and wraps failures in DeserializationError.
func DecodeJSON[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &DeserializationError{Type: fmt.Sprintf("%T", v), Err: err}
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// APIError carries the errors array of an api_type=json write response.
type APIError struct {
	Endpoint Endpoint
	Errors   [][]string
}

func (e *APIError) Error() string {
	var msgs []string
	for _, item := range e.Errors {
		msgs = append(msgs, strings.Join(item, ": "))
	}
	return fmt.Sprintf("%s rejected: %s", e.Endpoint, strings.Join(msgs, "; "))
}
