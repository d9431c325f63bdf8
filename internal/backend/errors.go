package backend

import (
	"context"
	"errors"
	"fmt"
)

// Class buckets a failed remote operation by how the caller must react
type Class int

const (
	// ClassCancelled marks a request superseded by a newer one of the
	// same kind. Callers swallow these silently.
	ClassCancelled Class = iota
	// ClassTransient marks a network or server failure. Callers log it
	// and keep whatever state they already have.
	ClassTransient
	// ClassFatalForOperation marks a failure that will not succeed on
	// retry. Callers take a degraded fallback path, never crash.
	ClassFatalForOperation
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Classify maps an error from any client method onto the taxonomy
func Classify(err error) Class {
	if IsCancelled(err) {
		return ClassCancelled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return ClassFatalForOperation
	}
	return ClassTransient
}

// IsCancelled reports whether the error came from a superseded request
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
