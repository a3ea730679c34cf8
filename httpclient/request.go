package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/webrequest/version"
)

// buildRequest turns resolved options into an *http.Request. upload, when
// non-nil, replaces any configured body.
func buildRequest(ctx context.Context, opts *Options, upload io.Reader) (*http.Request, error) {
	target, err := resolveURL(opts)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string
	if upload != nil {
		body = upload
	} else {
		body, contentType, err = requestBody(opts)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
	}
	if opts.JSON && contentType == "" && body != nil {
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.JSON && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if opts.Gzip && req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	opts.Auth.apply(req)
	return req, nil
}

// resolveURL joins URL to BaseURL and merges Query.
func resolveURL(opts *Options) (*url.URL, error) {
	raw := opts.URL
	if opts.BaseURL != "" && !isAbsoluteURL(raw) {
		raw = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URI %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URI %q", raw)
	}

	if len(opts.Query) > 0 {
		q := u.Query()
		for k, vs := range opts.Query {
			q[k] = vs
		}
		u.RawQuery = encodeQuery(q, opts.UseQuerystring)
	}
	return u, nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// encodeQuery encodes keys in sorted order. Repeated values become
// a[0]=x&a[1]=y unless useQuerystring is set, in which case they become
// a=x&a=y.
func encodeQuery(v url.Values, useQuerystring bool) string {
	if useQuerystring {
		return v.Encode()
	}
	var buf strings.Builder
	for _, k := range slices.Sorted(maps.Keys(v)) {
		vs := v[k]
		for i, val := range vs {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			key := k
			if len(vs) > 1 {
				key = k + "[" + strconv.Itoa(i) + "]"
			}
			buf.WriteString(url.QueryEscape(key))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(val))
		}
	}
	return buf.String()
}

// requestBody encodes whichever body field is set.
func requestBody(opts *Options) (io.Reader, string, error) {
	switch {
	case opts.Form != nil:
		return strings.NewReader(opts.Form.Encode()), "application/x-www-form-urlencoded", nil
	case opts.FormData != nil:
		return opts.FormData.encode()
	case len(opts.Multipart) > 0:
		return encodeRelated(opts.Multipart)
	default:
		return encodeBody(opts.Body, opts.JSON)
	}
}

// encodeBody converts a body value into an io.Reader and content type.
// Strings, byte slices and readers are sent as-is; other values are
// JSON-encoded.
func encodeBody(body any, jsonMode bool) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		if jsonMode {
			return strings.NewReader(v), "application/json", nil
		}
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
