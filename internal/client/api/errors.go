package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means no usable response was received: connection
	// failure, timeout, or an open circuit breaker.
	ErrUnavailable = errors.New("server unavailable")
)

// APIError carries a non-2xx response from an endpoint whose caller expects
// a decoded value rather than a CallResult.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}
