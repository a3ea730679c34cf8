package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorCode classifies request failures.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, TLS, etc).
	ErrCodeConnection
	// ErrCodeAborted indicates the request was aborted or its context canceled.
	ErrCodeAborted
	// ErrCodeDecode indicates the response body could not be decoded.
	ErrCodeDecode
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit
	// ErrCodeValidation indicates invalid options or a 4xx client error.
	ErrCodeValidation
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAborted:
		return "aborted"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyStarted is returned by handle mutators once dispatch has begun.
	ErrAlreadyStarted = errors.New("httpclient: request already started")
	// ErrNotWritable is returned by Stream.Write when the request was
	// dispatched without a streamed body.
	ErrNotWritable = errors.New("httpclient: request body is not writable")
	// ErrAborted is the cause recorded when a request is aborted.
	ErrAborted = errors.New("httpclient: request aborted")
	// ErrPending is returned by Future.Result before settlement.
	ErrPending = errors.New("httpclient: result pending")
	// ErrTooManyRedirects is wrapped when the redirect limit is exceeded.
	ErrTooManyRedirects = errors.New("httpclient: too many redirects")
)

// RequestError is a transport-level failure: no usable response was
// produced.
type RequestError struct {
	// Code classifies the failure.
	Code ErrorCode
	// ID is the handle ID of the failed request.
	ID string
	// Method and URL describe the attempted request.
	Method string
	URL    string
	// Options are the handle's options.
	Options *Options
	// Request is the built request, nil when building failed.
	Request *http.Request
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("httpclient: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("httpclient: %s %s %s: %v", e.Code, e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusResponse is the non-generic view of a completed response carried by
// ResponseError.
type StatusResponse interface {
	StatusCode() int
	StatusMessage() string
	Headers() http.Header
	Bytes() []byte
	URI() *url.URL
	Method() string
}

// ResponseError reports a completed response whose status is 400 or above
// while strict mode is on.
type ResponseError struct {
	// Code classifies the status.
	Code ErrorCode
	// Response is the completed response.
	Response StatusResponse
}

// Error returns the response status message.
func (e *ResponseError) Error() string {
	if msg := e.Response.StatusMessage(); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", e.Response.StatusCode())
}

// StatusCode returns the response status code.
func (e *ResponseError) StatusCode() int {
	return e.Response.StatusCode()
}

// ClassifyStatusCode maps an HTTP status to an error code. ok is false for
// statuses below 400.
func ClassifyStatusCode(statusCode int) (code ErrorCode, ok bool) {
	switch {
	case statusCode < 400:
		return 0, false
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrCodeAuth, true
	case statusCode == http.StatusNotFound:
		return ErrCodeNotFound, true
	case statusCode == http.StatusTooManyRequests:
		return ErrCodeRateLimit, true
	case statusCode < 500:
		return ErrCodeValidation, true
	default:
		return ErrCodeServer, true
	}
}

// classifyTransport picks the code for an error returned while sending the
// request or reading its body.
func classifyTransport(ctx context.Context, err error) ErrorCode {
	if errors.Is(context.Cause(ctx), ErrAborted) || errors.Is(err, context.Canceled) {
		return ErrCodeAborted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrCodeTimeout
	}
	return ErrCodeConnection
}

// AsResponse extracts the typed response from a ResponseError.
func AsResponse[T any](err error) (*Response[T], bool) {
	var e *ResponseError
	if !errors.As(err, &e) {
		return nil, false
	}
	r, ok := e.Response.(*Response[T])
	return r, ok
}

func requestCode(err error) (ErrorCode, bool) {
	var e *RequestError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

func responseCode(err error) (ErrorCode, bool) {
	var e *ResponseError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	code, ok := requestCode(err)
	return ok && code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	code, ok := requestCode(err)
	return ok && code == ErrCodeConnection
}

// IsAborted checks if an error comes from an aborted request.
func IsAborted(err error) bool {
	code, ok := requestCode(err)
	return ok && code == ErrCodeAborted
}

// IsDecode checks if an error is a body decode failure.
func IsDecode(err error) bool {
	code, ok := requestCode(err)
	return ok && code == ErrCodeDecode
}

// IsTransport checks if an error is a *RequestError.
func IsTransport(err error) bool {
	_, ok := requestCode(err)
	return ok
}

// IsStatus checks if an error is a *ResponseError.
func IsStatus(err error) bool {
	_, ok := responseCode(err)
	return ok
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	code, ok := responseCode(err)
	return ok && code == ErrCodeAuth
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	code, ok := responseCode(err)
	return ok && code == ErrCodeNotFound
}

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool {
	code, ok := responseCode(err)
	return ok && code == ErrCodeRateLimit
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool {
	code, ok := responseCode(err)
	return ok && code == ErrCodeServer
}

// IsValidation checks if an error is an options validation failure or a
// 4xx client error.
func IsValidation(err error) bool {
	if code, ok := requestCode(err); ok {
		return code == ErrCodeValidation
	}
	code, ok := responseCode(err)
	return ok && code == ErrCodeValidation
}
