package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Response is a completed exchange. The body has been read and decoded into
// T; header-derived values are computed on each call.
type Response[T any] struct {
	// ID is the ID of the handle that produced the response.
	ID string
	// Options are the handle's options as given.
	Options *Options
	// Message is the underlying response. Its body is already consumed.
	Message *http.Response

	body T
	raw  []byte
	jar  http.CookieJar
	// requestURL is the URL first requested, before redirects.
	requestURL *url.URL
}

// Content returns the decoded body.
func (r *Response[T]) Content() T {
	return r.body
}

// Bytes returns the body as received, after content decoding.
func (r *Response[T]) Bytes() []byte {
	return r.raw
}

// Headers returns the response headers.
func (r *Response[T]) Headers() http.Header {
	if r.Message == nil {
		return http.Header{}
	}
	return r.Message.Header
}

// ContentType returns the media type of the Content-Type header.
func (r *Response[T]) ContentType() string {
	ct, _ := ParseContentType(r.Headers().Get("Content-Type"))
	return ct
}

// Charset returns the charset parameter of the Content-Type header.
func (r *Response[T]) Charset() string {
	_, cs := ParseContentType(r.Headers().Get("Content-Type"))
	return cs
}

// ContentLength returns the Content-Length header, or the character count
// of a string body when the header is absent.
func (r *Response[T]) ContentLength() (int64, bool) {
	return ParseContentLength(r.Headers(), any(r.body))
}

// Cookies returns the jar's cookies for the requested URL, or nil when the
// request had no jar. Redirects do not change the URL queried.
func (r *Response[T]) Cookies() []*http.Cookie {
	u := r.requestURL
	if u == nil {
		u = r.URI()
	}
	if r.jar == nil || u == nil {
		return nil
	}
	return r.jar.Cookies(u)
}

// LastModified returns the Last-Modified time, or the zero time.
func (r *Response[T]) LastModified() time.Time {
	return ParseLastModified(r.Headers())
}

// Method returns the method of the final request.
func (r *Response[T]) Method() string {
	if r.Message != nil && r.Message.Request != nil && r.Message.Request.Method != "" {
		return r.Message.Request.Method
	}
	if r.Options != nil && r.Options.Method != "" {
		return strings.ToUpper(r.Options.Method)
	}
	return http.MethodGet
}

// URI returns the URL of the final request, after redirects.
func (r *Response[T]) URI() *url.URL {
	if r.Message == nil || r.Message.Request == nil {
		return nil
	}
	return r.Message.Request.URL
}

// HTTPVersion returns the protocol version, e.g. "1.1".
func (r *Response[T]) HTTPVersion() string {
	if r.Message == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d", r.Message.ProtoMajor, r.Message.ProtoMinor)
}

// Server returns the Server header.
func (r *Response[T]) Server() string {
	return r.Headers().Get("Server")
}

// StatusCode returns the response status code.
func (r *Response[T]) StatusCode() int {
	if r.Message == nil {
		return 0
	}
	return r.Message.StatusCode
}

// StatusMessage returns the reason phrase, e.g. "Not Found".
func (r *Response[T]) StatusMessage() string {
	if r.Message == nil {
		return ""
	}
	code := strconv.Itoa(r.Message.StatusCode)
	if msg, ok := strings.CutPrefix(r.Message.Status, code+" "); ok && msg != "" {
		return msg
	}
	return http.StatusText(r.Message.StatusCode)
}
