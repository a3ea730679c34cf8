package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Struct validates s using its `validate` struct tags.
// Returns a *Error listing every failing field.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Fields: []FieldError{{Field: "_", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, 0, len(validationErrors))}
	for _, e := range validationErrors {
		out.Fields = append(out.Fields, FieldError{
			Field:   e.Field(),
			Message: formatValidationError(e),
		})
	}
	return out
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "must be a valid URL"
	case "uri":
		return "must be a valid URI"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (nextLower && runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				result.WriteRune('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
