// Package clients provides the outbound HTTP client used by remote adapters.
package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport-level failures. Adapters translate these into domain errors.
var (
	// ErrCircuitOpen is returned without contacting the remote while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once attempts run out.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	errBodyNotRewindable = errors.New("request body cannot be rewound for retry")
)

// StatusError is a 5xx response that exhausted the retry budget.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, http.StatusText(e.Code))
}
