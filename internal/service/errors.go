package service

import (
	"errors"

	"github.com/zlovtnik/homeswift/internal/repository"
)

// Sentinel errors for service operations
var (
	// ErrRequestNotFound indicates the service request was not found
	ErrRequestNotFound = errors.New("service request not found")

	// ErrCustomerNotFound indicates the customer was not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrProviderNotFound indicates the provider was not found
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderInactive indicates the provider cannot take jobs
	ErrProviderInactive = errors.New("provider is not active")

	// ErrInvalidStatusTransition indicates the request cannot move to the target status
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrInvalidStatus indicates an unknown status value
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority indicates an unknown priority value
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidDateRange indicates a report range that cannot be parsed or is inverted
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrDuplicateBooking indicates an active request with the same booking already exists
	ErrDuplicateBooking = errors.New("duplicate booking")
)

// RequestError wraps a lifecycle error with additional context
type RequestError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Message string // User-friendly message
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError
func NewRequestError(op string, err error, message string) *RequestError {
	return &RequestError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

// translate maps repository sentinels onto service sentinels
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicateBooking):
		return ErrDuplicateBooking
	}
	return err
}
