// Package validation checks request options before they are dispatched.
//
// Struct tags are evaluated with go-playground/validator; cross-field rules
// are collected with a Validator. Both produce *Error.
//
//	type Options struct {
//	    URL          string `validate:"omitempty,url"`
//	    MaxRedirects int    `validate:"min=0"`
//	}
//	err := validation.Struct(opts)
package validation
