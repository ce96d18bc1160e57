package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/seqkit/errors"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Check collects argument errors for a single operator.
type Check struct {
	op     string
	errors []FieldError
}

// For starts a Check for the named operator.
func For(op string) *Check {
	return &Check{op: op}
}

// AddError adds a field error.
func (c *Check) AddError(field, message string) {
	c.errors = append(c.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (c *Check) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all validation errors.
func (c *Check) Errors() []FieldError {
	return c.errors
}

// Require records an error when present is false. Callers pass the nil
// comparison themselves (src != nil, fn != nil) so typed nil funcs are caught.
func (c *Check) Require(field string, present bool) *Check {
	if !present {
		c.AddError(field, "must not be nil")
	}
	return c
}

// NonNegative checks that n >= 0.
func (c *Check) NonNegative(field string, n int) *Check {
	if n < 0 {
		c.AddError(field, fmt.Sprintf("must not be negative (got %d)", n))
	}
	return c
}

// Positive checks that n > 0.
func (c *Check) Positive(field string, n int) *Check {
	if n <= 0 {
		c.AddError(field, fmt.Sprintf("must be positive (got %d)", n))
	}
	return c
}

// Custom applies a custom validation condition.
func (c *Check) Custom(condition bool, field, message string) *Check {
	if !condition {
		c.AddError(field, message)
	}
	return c
}

// Err returns an INVALID_ARGUMENT error describing every failed field, or
// nil when all checks passed.
func (c *Check) Err() error {
	if !c.HasErrors() {
		return nil
	}
	first := c.errors[0]
	err := errors.InvalidArgument(c.op, first.Field, first.Message)
	if len(c.errors) > 1 {
		messages := make([]string, len(c.errors))
		for i, e := range c.errors {
			messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		err.Message = strings.Join(messages, "; ")
	}
	err.Details["fields"] = c.errors
	return err
}
