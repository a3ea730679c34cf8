package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	URL          string `mapstructure:"url" validate:"omitempty,url"`
	Method       string `validate:"omitempty,oneof=GET POST"`
	MaxRedirects int    `mapstructure:"max_redirects" validate:"min=0"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(sample{URL: "http://example.com", Method: "GET"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructInvalid(t *testing.T) {
	err := Struct(sample{URL: "::nope", Method: "BREW", MaxRedirects: -1})
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %T", err)
	}
	for _, field := range []string{"url", "method", "max_redirects"} {
		if !ve.Has(field) {
			t.Errorf("expected %q to fail, got %v", field, ve.Fields)
		}
	}
	if !strings.Contains(err.Error(), "max_redirects: must be at least 0") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidatorCollects(t *testing.T) {
	v := New()
	v.Custom(true, "ok", "never").
		Custom(false, "body", "conflicts with form").
		OneOf("encoding", "", []string{"utf-8"}).
		OneOf("scheme", "ftp", []string{"http", "https"})

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	var ve *Error
	if !errors.As(v.Err(), &ve) {
		t.Fatal("expected *Error")
	}
	if len(ve.Fields) != 2 || !ve.Has("body") || !ve.Has("scheme") {
		t.Errorf("unexpected fields: %v", ve.Fields)
	}
}

func TestValidatorMerge(t *testing.T) {
	v := New()
	v.Merge("x", nil)
	if v.Err() != nil {
		t.Fatal("nil merge should not add errors")
	}
	v.Merge("tls", errors.New("bad cert"))
	v.Merge("ignored", &Error{Fields: []FieldError{{Field: "url", Message: "is invalid"}}})
	ve := v.Err().(*Error)
	if !ve.Has("tls") || !ve.Has("url") || ve.Has("ignored") {
		t.Errorf("unexpected fields: %v", ve.Fields)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"URL":          "url",
		"BaseURL":      "base_url",
		"MaxRedirects": "max_redirects",
		"HTTPVersion":  "http_version",
		"name":         "name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, expected %q", in, got, want)
		}
	}
}
