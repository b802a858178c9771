// Package validation provides input validation for registry descriptors and
// HTTP query parameters.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both produce an
// *errors.AppError whose details carry the offending fields.
//
// # Struct Tag Validation
//
//	type descriptorFields struct {
//	    Name  string `json:"name" validate:"required"`
//	    Modes []string `json:"modes" validate:"required,min=1"`
//	}
//	err := validation.Validate(fields)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("mode", mode, []string{"text", "json"})
//	err := v.Validate()
package validation
