package payout

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the payout platform.
type APIError struct {
	Status  int
	Message string
	Op      string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payout: %s: %s (%d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("payout: %s: status %d", e.Op, e.Status)
}

// Code implements the error-code convention used by handler summaries.
func (e *APIError) Code() string {
	return fmt.Sprintf("API_%d", e.Status)
}

// IsUnauthorized reports whether err is an APIError with a 401 status.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
