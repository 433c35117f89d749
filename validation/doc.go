// Package validation checks plan definitions and request payloads.
//
// Struct tags are evaluated with go-playground/validator and reported as an
// INVALID_INPUT AppError listing every failing field by its yaml or json
// name. The fluent Validator covers ad-hoc checks that have no struct.
//
//	type Step struct {
//	    Op string `yaml:"op" validate:"required"`
//	}
//	err := validation.Validate(step)
//
//	v := validation.New()
//	v.Required("name", name).OneOf("collector", c, []string{"appending", "conjoining"})
//	if err := v.Validate(); err != nil { ... }
package validation
