package notify

import "fmt"

// TransportError represents a failed notification delivery.
// It covers both transport failures and non-success webhook responses.
type TransportError struct {
	// StatusCode is the HTTP status returned by the channel
	// (0 if the request never completed)
	StatusCode int

	// Message is the response body or a failure description
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("notification delivery failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notification delivery failed: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}
