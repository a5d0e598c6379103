package datagov

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is returned without contacting the upstream while the breaker is open.
var ErrCircuitOpen = errors.New("datagov circuit open")

// TransportError is a failure to get any HTTP response: connection refused,
// DNS, reset, or the per-request timeout. Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("datagov transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-2xx response. 429 and 5xx are retryable, any other status is fatal.
type UpstreamError struct {
	StatusCode int
	Body       string // truncated response body
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("datagov http %d", e.StatusCode)
	}
	return fmt.Sprintf("datagov http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DecodeError is a 2xx response whose body is not the expected JSON document.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("datagov decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FetchError is the terminal failure returned by Client.Fetch once the retry
// policy has given up or a fatal error was seen.
type FetchError struct {
	Attempts  int
	Retryable bool // the last error was retryable; attempts were exhausted
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable classifies an attempt error.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	return false
}
