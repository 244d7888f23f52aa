// Package validator provides the small set of field-level checks the
// protocol envelope relies on for its §4.1 validation failure modes.
package validator

import (
	"fmt"
	"time"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is an accumulated list of validation failures.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msg := "validation errors:"
	for _, err := range e {
		msg += fmt.Sprintf("\n  - %s", err.Error())
	}
	return msg
}

// HasErrors reports whether any validation failures were recorded.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Add records one validation failure.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, &ValidationError{Field: field, Message: message})
}

// ValidateRequired checks a string field is non-empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	return nil
}

// ValidateEnum checks a field's value is one of the allowed set.
func ValidateEnum(field, value string, allowedValues []string) error {
	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %v", field, allowedValues),
	}
}

// ValidateRange checks a numeric field falls within [min, max]. max <= 0
// disables the upper bound.
func ValidateRange(field string, value, min, max int) error {
	if value < min {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %d", field, min)}
	}
	if max > 0 && value > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d", field, max)}
	}
	return nil
}

// ValidateUTCTimestamp checks that value is an ISO-8601 instant ending
// in "Z" (i.e. UTC), per the envelope's timestamp requirement.
func ValidateUTCTimestamp(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	if value[len(value)-1] != 'Z' {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be a UTC timestamp ending in Z", field)}
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is not a valid ISO-8601 timestamp", field)}
	}
	return nil
}
