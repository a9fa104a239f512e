package gemini

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("GEMINI_API_KEY environment variable is not set")
	// ErrUnavailable is returned while the circuit breaker is open
	ErrUnavailable = errors.New("gemini endpoint unavailable")
	// ErrRetriesExhausted is returned when every attempt failed
	ErrRetriesExhausted = errors.New("gemini retries exhausted")
)

// StatusError non-2xx answer of the endpoint
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.Code, e.Body)
}
