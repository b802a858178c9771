package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/inventory/errors"
)

// Validator accumulates field errors for checks that struct tags cannot
// express, such as a query parameter or a cross-field config rule. Checks
// chain and the result is read once with Validate.
type Validator struct {
	errors []FieldError
}

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records that field was rejected with message.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the failed checks in the order they ran.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate folds the failed checks into one INVALID_INPUT error listing every
// field under the "fields" detail. It returns nil when all checks passed.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	appErr := errors.Validation(strings.Join(parts, "; "))
	appErr.Details = map[string]any{"fields": v.errors}
	return appErr
}

// Required rejects a blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// OneOf rejects a value outside allowed. An empty value passes; pair it with
// Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	ok := value == "" || slices.Contains(allowed, value)
	return v.Custom(ok, field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// Custom records message for field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}
