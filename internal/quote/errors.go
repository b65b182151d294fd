package quote

import (
	"errors"
	"fmt"
)

// Validation failures, reported in the order they are checked
var (
	ErrMissingField    = errors.New("missing required field")
	ErrFieldTooLong    = errors.New("value is too long")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidTime     = errors.New("preferred time must be HH:MM")
	ErrInvalidPhone    = errors.New("phone number must be exactly 10 digits")
	ErrInvalidDate     = errors.New("preferred date must be YYYY-MM-DD")
	ErrPastDate        = errors.New("preferred date cannot be in the past")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 10")
	ErrPricingNotFound = errors.New("pricing not found")
)

// FieldError ties a validation failure to the input field that caused it
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) *FieldError {
	return &FieldError{Field: field, Err: err}
}
