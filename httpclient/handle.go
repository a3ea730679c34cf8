package httpclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Handle is a single request. It is returned before anything is sent so
// listeners and mutators can be applied; dispatch begins on Start, on the
// first Stream Write or End, or on the first Wait.
type Handle[T any] struct {
	// ID identifies the request in logs, errors and responses.
	ID string
	// Options are the request options. They must not be modified directly
	// once dispatch has begun.
	Options *Options

	stream *Stream
	future *Future[T]
}

// Stream returns the streaming side of the request.
func (h *Handle[T]) Stream() *Stream {
	return h.stream
}

// Response returns the result side of the request.
func (h *Handle[T]) Response() *Future[T] {
	return h.future
}

// Start begins dispatch. It is a no-op after the first call.
func (h *Handle[T]) Start() *Handle[T] {
	h.stream.start()
	return h
}

// Wait is shorthand for h.Response().Wait(ctx).
func (h *Handle[T]) Wait(ctx context.Context) (*Response[T], error) {
	return h.future.Wait(ctx)
}

// SetHeader sets a request header. With clobber false an existing header of
// the same name (in any case) is kept.
func (h *Handle[T]) SetHeader(name, value string, clobber bool) error {
	return h.stream.mutate(func() {
		if h.Options.Headers == nil {
			h.Options.Headers = make(map[string]string)
		}
		setHeader(h.Options.Headers, name, value, clobber)
	})
}

// SetHeaders sets each header, replacing existing values.
func (h *Handle[T]) SetHeaders(headers map[string]string) error {
	return h.stream.mutate(func() {
		if h.Options.Headers == nil {
			h.Options.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			setHeader(h.Options.Headers, k, v, true)
		}
	})
}

// Qs adds query parameters. With clobber false keys already present are
// kept.
func (h *Handle[T]) Qs(values url.Values, clobber bool) error {
	return h.stream.mutate(func() {
		if h.Options.Query == nil {
			h.Options.Query = make(url.Values, len(values))
		}
		for k, vs := range values {
			if _, exists := h.Options.Query[k]; exists && !clobber {
				continue
			}
			h.Options.Query[k] = append([]string(nil), vs...)
		}
	})
}

// SetAuth sets bearer auth when bearer is non-empty, else basic auth.
func (h *Handle[T]) SetAuth(user, pass, bearer string) error {
	return h.stream.mutate(func() {
		h.Options.Auth = credentialsAuth(user, pass, bearer)
	})
}

// SetJar sets the cookie jar. A nil jar installs a new one.
func (h *Handle[T]) SetJar(jar CookieJar) error {
	return h.stream.mutate(func() {
		if jar == nil {
			jar = NewJar()
		}
		h.Options.Jar = jar
		h.Options.UseJar = true
	})
}

// SetJSON enables JSON mode and, when v is non-nil, sends v as the body.
func (h *Handle[T]) SetJSON(v any) error {
	return h.stream.mutate(func() {
		h.Options.JSON = true
		if v != nil {
			clearBody(h.Options)
			h.Options.Body = v
		}
	})
}

// SetForm sends values as a urlencoded form.
func (h *Handle[T]) SetForm(values url.Values) error {
	return h.stream.mutate(func() {
		clearBody(h.Options)
		h.Options.Form = values
	})
}

// SetMultipart sends parts as a multipart/related body.
func (h *Handle[T]) SetMultipart(parts []Part) error {
	return h.stream.mutate(func() {
		clearBody(h.Options)
		h.Options.Multipart = parts
	})
}

func clearBody(o *Options) {
	o.Body, o.Form, o.FormData, o.Multipart = nil, nil, nil, nil
}

// Description is the serializable summary of a handle.
type Description struct {
	URI     string            `json:"uri"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
}

// ToJSON describes the request target, method and headers.
func (h *Handle[T]) ToJSON() Description {
	d := Description{
		Method:  strings.ToUpper(h.Options.Method),
		Headers: h.Options.Headers,
	}
	if d.Method == "" {
		d.Method = "GET"
	}
	if d.Headers == nil {
		d.Headers = map[string]string{}
	}
	if u, err := resolveURL(h.Options); err == nil {
		d.URI = u.String()
	} else {
		d.URI = h.Options.URL
	}
	return d
}

// MarshalJSON encodes the handle as its Description.
func (h *Handle[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.ToJSON())
}
