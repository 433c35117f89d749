package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/transducekit/errors"
)

// FieldError is a validation failure for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects field errors from chained checks.
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

// Errors returns the recorded field errors.
func (v *Validator) Errors() []FieldError { return v.errors }

// Validate returns an INVALID_INPUT AppError describing every failure, or
// nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", slices.Clone(v.errors))
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Min checks a lower bound.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// OneOf checks that a non-empty value is among allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// OptionalUUID checks that a non-empty value parses as a UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := uuid.Parse(value); err != nil {
		v.AddError(field, "must be a valid UUID")
	}
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// ParseUUID parses a required UUID field.
func ParseUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.InvalidInput(field, "is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.InvalidInput(field, "must be a valid UUID")
	}
	return id, nil
}
