package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/net/html/charset"
)

// contentDecoder wraps body according to Content-Encoding. It only acts
// when gzip was requested; otherwise the transport has already handled
// compression.
func contentDecoder(resp *http.Response, gzipRequested bool) (io.Reader, func() error, error) {
	nop := func() error { return nil }
	if !gzipRequested || resp.Uncompressed {
		return resp.Body, nop, nil
	}
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			if err == io.EOF {
				return resp.Body, nop, nil
			}
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, zr.Close, nil
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			if err == io.EOF {
				return resp.Body, nop, nil
			}
			return nil, nil, fmt.Errorf("deflate: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return resp.Body, nop, nil
	}
}

// decodeContent converts raw into T. Strings are charset-decoded, byte
// slices are returned as-is, struct{} discards the body and every other
// type is decoded as JSON. In JSON mode a body holding a JSON string is
// unquoted into a string or []byte T; other bodies stay undecoded. An empty
// body yields the zero value.
func decodeContent[T any](raw []byte, header http.Header, encoding string, jsonMode bool) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		if s, ok := jsonString(raw, jsonMode); ok {
			*p = s
			return out, nil
		}
		s, err := decodeText(raw, header.Get("Content-Type"), encoding)
		if err != nil {
			return out, err
		}
		*p = s
	case *[]byte:
		if s, ok := jsonString(raw, jsonMode); ok {
			*p = []byte(s)
			return out, nil
		}
		*p = raw
	case *struct{}:
	default:
		return decodeJSON[T](raw)
	}
	return out, nil
}

// jsonString unquotes raw when jsonMode is set and raw is a JSON string.
func jsonString(raw []byte, jsonMode bool) (string, bool) {
	if !jsonMode {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeJSON[T any](raw []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}

// decodeText decodes raw using encoding, or the Content-Type charset when
// encoding is empty. Unknown response charsets fall back to the raw bytes.
func decodeText(raw []byte, contentType, encoding string) (string, error) {
	name := encoding
	if name == "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			name = params["charset"]
		}
	}
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return string(raw), nil
	}

	enc, _ := charset.Lookup(name)
	if enc == nil {
		if encoding != "" {
			return "", fmt.Errorf("unknown encoding %q", encoding)
		}
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}
