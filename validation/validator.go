package validation

import (
	"strings"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when one or more fields are invalid.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validator collects field errors from programmatic checks.
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
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Merge appends the field errors of err when it is a *Error; other non-nil
// errors are recorded under field.
func (v *Validator) Merge(field string, err error) *Validator {
	if err == nil {
		return v
	}
	if ve, ok := err.(*Error); ok {
		v.errors = append(v.errors, ve.Fields...)
		return v
	}
	v.AddError(field, err.Error())
	return v
}

// Custom records message for field when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Err returns the collected errors as *Error, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return &Error{Fields: append([]FieldError(nil), v.errors...)}
}
