package scheduler

import (
	"errors"
	"fmt"
)

// Common error types for the scheduler service
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrStateNotFound indicates that the card has no scheduling state.
	ErrStateNotFound = errors.New("scheduling state not found")

	// ErrInvalidGrade indicates a grade outside the 0-3 range.
	ErrInvalidGrade = errors.New("invalid grade")

	// ErrInvalidLimit indicates a non-positive queue limit.
	ErrInvalidLimit = errors.New("queue limit must be positive")
)

// ServiceError wraps errors from the scheduler service with additional
// context. This allows consumers to differentiate between different
// types of service errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "build_queue", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewBuildQueueError returns a new ServiceError for the build_queue operation.
func NewBuildQueueError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "build_queue",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}
