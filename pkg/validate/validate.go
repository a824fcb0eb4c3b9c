package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator wires go-playground/validator into Echo's Validator
// interface so handlers can call c.Validate(&req).
type RequestValidator struct {
	validator *validator.Validate
}

// New returns a validator ready to be assigned to echo.Echo.Validator
func New() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// FieldErrors converts a validation error into a field-keyed message map
// suitable for returning to the client. Non-validation errors map to a
// single "request" entry.
func FieldErrors(err error) map[string]string {
	fields := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["request"] = "invalid request"
		return fields
	}
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a well-formed URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
