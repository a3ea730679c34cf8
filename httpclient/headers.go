package httpclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ParseContentType splits a Content-Type value into its media type and
// charset. Segments are separated by "; ". The media type is the first
// segment up to any "=" after its first character; the charset is the value of the second segment when
// its key is "charset" in any case. Missing parts are returned as "".
func ParseContentType(value string) (contentType, charset string) {
	if value == "" {
		return "", ""
	}
	segments := strings.Split(value, "; ")
	contentType, _ = splitKeyValue(segments[0])
	if len(segments) > 1 {
		key, val := splitKeyValue(segments[1])
		if strings.EqualFold(key, "charset") {
			charset = val
		}
	}
	return contentType, charset
}

// splitKeyValue splits s at the first "=" that is not its first character.
// Without such a separator the whole of s is the key.
func splitKeyValue(s string) (key, value string) {
	if i := strings.Index(s, "="); i > 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// ParseContentLength reports the Content-Length header as an integer. When
// the header is absent and body is a string, its length in characters is
// reported instead. ok is false when neither applies or the header is not a
// non-negative integer.
func ParseContentLength(h http.Header, body any) (n int64, ok bool) {
	if values := h.Values("Content-Length"); len(values) > 0 {
		n, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	if s, isText := body.(string); isText {
		return int64(utf8.RuneCountInString(s)), true
	}
	return 0, false
}

// ParseLastModified parses the Last-Modified header. A missing or malformed
// header yields the zero time.
func ParseLastModified(h http.Header) time.Time {
	v := h.Get("Last-Modified")
	if v == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}
	}
	return t
}
