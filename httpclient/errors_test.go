package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeAborted, "aborted"},
		{ErrCodeDecode, "decode"},
		{ErrCodeAuth, "auth"},
		{ErrCodeNotFound, "not_found"},
		{ErrCodeRateLimit, "rate_limit"},
		{ErrCodeValidation, "validation"},
		{ErrCodeServer, "server"},
		{ErrorCode(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("ErrorCode(%d).String() = %q, expected %q", tc.code, got, tc.want)
		}
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
		ok     bool
	}{
		{200, 0, false},
		{304, 0, false},
		{399, 0, false},
		{400, ErrCodeValidation, true},
		{401, ErrCodeAuth, true},
		{403, ErrCodeAuth, true},
		{404, ErrCodeNotFound, true},
		{418, ErrCodeValidation, true},
		{429, ErrCodeRateLimit, true},
		{500, ErrCodeServer, true},
		{503, ErrCodeServer, true},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			code, ok := ClassifyStatusCode(tc.status)
			if ok != tc.ok || (ok && code != tc.code) {
				t.Errorf("expected (%s, %v), got (%s, %v)", tc.code, tc.ok, code, ok)
			}
		})
	}
}

func TestRequestErrorPredicates(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("wrapped: %w", &RequestError{Code: ErrCodeConnection, Method: "GET", URL: "http://x", Err: cause})

	if !IsConnection(err) || !IsTransport(err) {
		t.Error("expected connection transport error")
	}
	if IsTimeout(err) || IsAborted(err) || IsStatus(err) || IsDecode(err) {
		t.Error("unexpected classification")
	}
	if !errors.Is(err, cause) {
		t.Error("expected RequestError to unwrap to its cause")
	}
	if got := err.Error(); got != "wrapped: httpclient: connection GET http://x: dial tcp: refused" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestResponseErrorPredicates(t *testing.T) {
	resp := &Response[string]{Message: &http.Response{StatusCode: 404, Status: "404 Not Found"}}
	err := error(&ResponseError{Code: ErrCodeNotFound, Response: resp})

	if !IsNotFound(err) || !IsStatus(err) {
		t.Error("expected not found status error")
	}
	if IsTransport(err) || IsAuth(err) || IsServerError(err) || IsRateLimit(err) {
		t.Error("unexpected classification")
	}
	if err.Error() != "Not Found" {
		t.Errorf("expected status message, got %q", err.Error())
	}

	got, ok := AsResponse[string](err)
	if !ok || got != resp {
		t.Error("expected AsResponse to return the typed response")
	}
	if _, ok := AsResponse[[]byte](err); ok {
		t.Error("expected AsResponse with the wrong type to fail")
	}
	if _, ok := AsResponse[string](errors.New("plain")); ok {
		t.Error("expected AsResponse on a plain error to fail")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(&RequestError{Code: ErrCodeValidation}) {
		t.Error("expected request validation error")
	}
	resp := &Response[string]{Message: &http.Response{StatusCode: 422}}
	if !IsValidation(&ResponseError{Code: ErrCodeValidation, Response: resp}) {
		t.Error("expected response validation error")
	}
	if IsValidation(errors.New("x")) {
		t.Error("plain error is not a validation error")
	}
}

func TestClassifyTransport(t *testing.T) {
	aborted, cancel := context.WithCancelCause(context.Background())
	cancel(ErrAborted)

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want ErrorCode
	}{
		{"aborted cause", aborted, errors.New("x"), ErrCodeAborted},
		{"canceled", context.Background(), context.Canceled, ErrCodeAborted},
		{"deadline", context.Background(), fmt.Errorf("do: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"other", context.Background(), errors.New("refused"), ErrCodeConnection},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyTransport(tc.ctx, tc.err); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
