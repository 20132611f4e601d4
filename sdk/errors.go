package mailqueue

import "fmt"

// APIError is returned when the gateway responds with an unexpected status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailqueue: HTTP %d: %s", e.StatusCode, e.Message)
}
