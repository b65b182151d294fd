package fp

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator is a function that validates a value and returns an error if invalid.
type Validator[T any] func(T) error

// ValidationError represents a validation error with field information.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Required validates that a string is not blank.
func Required(field string) Validator[string] {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// Pattern validates against a regular expression.
func Pattern(field string, pattern *regexp.Regexp, message string) Validator[string] {
	return func(s string) error {
		if pattern == nil || !pattern.MatchString(s) {
			return ValidationError{Field: field, Message: message}
		}
		return nil
	}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates email format.
func Email(field string) Validator[string] {
	return Pattern(field, emailPattern, "must be a valid email address")
}

// Range validates that a number is within a closed range.
func Range[T int | int32 | int64 | float32 | float64](field string, min, max T) Validator[T] {
	return func(n T) error {
		if n < min || n > max {
			return ValidationError{Field: field, Message: fmt.Sprintf("must be between %v and %v", min, max)}
		}
		return nil
	}
}

// NotEmpty validates that a slice has at least one element.
func NotEmpty[T any](field string) Validator[[]T] {
	return func(s []T) error {
		if len(s) == 0 {
			return ValidationError{Field: field, Message: "must not be empty"}
		}
		return nil
	}
}

// FirstError runs validators in order and returns the first failure.
func FirstError[T any](value T, validators ...Validator[T]) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}
