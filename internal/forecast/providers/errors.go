package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen is returned without issuing a request while the circuit
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrInvalidJSON is returned when a 2xx response body is not JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")

	errNoHTTPClient = errors.New("http client not configured")
)

// StatusError is a non-2xx response. StatusCode lets callers tell permanent
// 4xx failures from transient 5xx/429 ones.
type StatusError struct {
	StatusCode int
	Reason     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d, message='%s', url='%s'", e.StatusCode, e.Reason, e.URL)
}

// Temporary reports whether the status is worth retrying later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// TransportError is a failure below HTTP: connection refused, timeout, a
// truncated body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("get %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FetchError is returned once every attempt has failed. Err is the last
// attempt's error.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
