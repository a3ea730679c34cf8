package httpclient

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/kbukum/webrequest/validation"
)

// DefaultMaxRedirects is used when Options.MaxRedirects is zero.
const DefaultMaxRedirects = 10

// Options configures a single request. Every field is optional except URL,
// which Create injects from the address argument.
type Options struct {
	// URL is the target. Relative URLs are joined to BaseURL.
	URL string `validate:"required"`
	// BaseURL is prepended to relative URLs.
	BaseURL string `validate:"omitempty,url"`
	// Method defaults to GET.
	Method string
	// Headers are set on the request, replacing earlier values.
	Headers map[string]string
	// Query is merged into the URL query string.
	Query url.Values
	// UseQuerystring encodes repeated keys as a=1&a=2 instead of a[0]=1&a[1]=2.
	UseQuerystring bool

	// Body is a string, []byte, io.Reader or a value encoded as JSON.
	Body any `validate:"-"`
	// JSON sends Accept: application/json, marks the body as JSON and
	// decodes JSON responses.
	JSON bool
	// Form is sent as application/x-www-form-urlencoded.
	Form url.Values
	// FormData is sent as multipart/form-data.
	FormData *MultipartBody `validate:"-"`
	// Multipart is sent as multipart/related.
	Multipart []Part `validate:"-"`

	// Auth is applied after headers.
	Auth *AuthConfig `validate:"-"`
	// Jar stores and sends cookies. UseJar installs a fresh jar when Jar is nil.
	Jar    CookieJar `validate:"-"`
	UseJar bool

	// Proxy is an http, https or socks5 proxy URL.
	Proxy string `validate:"omitempty,url"`
	// TLS supplies client certificates and trust roots.
	TLS *TLSConfig `validate:"-"`
	// StrictSSL false disables certificate verification.
	StrictSSL *bool

	// FollowRedirect false returns 3xx responses as-is.
	FollowRedirect *bool
	// RedirectFunc is consulted for each redirect; false stops following.
	RedirectFunc func(*http.Response) bool `validate:"-"`
	// FollowAllRedirects follows redirects for methods other than GET and HEAD.
	FollowAllRedirects bool
	// MaxRedirects bounds the redirect chain. Zero means DefaultMaxRedirects.
	MaxRedirects int `validate:"min=0"`
	// Timeout bounds the whole exchange including the body read.
	Timeout time.Duration `validate:"min=0"`

	// Gzip requests compressed responses and decodes gzip and deflate bodies.
	Gzip bool
	// Encoding forces the charset used to decode text responses.
	Encoding string
	// HAR describes the request in HTTP Archive form. Its fields override
	// the ones above.
	HAR *HARRequest `validate:"-"`

	// ThrowResponseError overrides the client strict mode for this request.
	ThrowResponseError *bool
}

// Bool returns a pointer to v, for the optional boolean fields.
func Bool(v bool) *bool {
	return &v
}

// Clone returns a copy whose maps and slices are independent of o.
// A nil receiver yields an empty Options.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	out := *o
	out.Headers = maps.Clone(o.Headers)
	out.Query = cloneValues(o.Query)
	out.Form = cloneValues(o.Form)
	out.Multipart = slices.Clone(o.Multipart)
	return &out
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}

// mergeOptions layers over on top of base. Set fields in over win; headers
// and query keys are merged individually.
func mergeOptions(base, over *Options) *Options {
	out := base.Clone()
	if over == nil {
		return out
	}
	o := over.Clone()

	if o.URL != "" {
		out.URL = o.URL
	}
	if o.BaseURL != "" {
		out.BaseURL = o.BaseURL
	}
	if o.Method != "" {
		out.Method = o.Method
	}
	if len(o.Headers) > 0 {
		if out.Headers == nil {
			out.Headers = make(map[string]string, len(o.Headers))
		}
		for k, v := range o.Headers {
			setHeader(out.Headers, k, v, true)
		}
	}
	if len(o.Query) > 0 {
		if out.Query == nil {
			out.Query = make(url.Values, len(o.Query))
		}
		for k, vs := range o.Query {
			out.Query[k] = vs
		}
	}
	out.UseQuerystring = out.UseQuerystring || o.UseQuerystring

	// Body kinds are exclusive: the overlay's choice replaces the base's.
	if o.Body != nil || o.Form != nil || o.FormData != nil || len(o.Multipart) > 0 {
		out.Body, out.Form, out.FormData, out.Multipart = o.Body, o.Form, o.FormData, o.Multipart
	}
	out.JSON = out.JSON || o.JSON

	if o.Auth != nil {
		out.Auth = o.Auth
	}
	if o.Jar != nil {
		out.Jar = o.Jar
	}
	out.UseJar = out.UseJar || o.UseJar
	if o.Proxy != "" {
		out.Proxy = o.Proxy
	}
	if o.TLS != nil {
		out.TLS = o.TLS
	}
	if o.StrictSSL != nil {
		out.StrictSSL = o.StrictSSL
	}
	if o.FollowRedirect != nil {
		out.FollowRedirect = o.FollowRedirect
	}
	if o.RedirectFunc != nil {
		out.RedirectFunc = o.RedirectFunc
	}
	out.FollowAllRedirects = out.FollowAllRedirects || o.FollowAllRedirects
	if o.MaxRedirects != 0 {
		out.MaxRedirects = o.MaxRedirects
	}
	if o.Timeout != 0 {
		out.Timeout = o.Timeout
	}
	out.Gzip = out.Gzip || o.Gzip
	if o.Encoding != "" {
		out.Encoding = o.Encoding
	}
	if o.HAR != nil {
		out.HAR = o.HAR
	}
	if o.ThrowResponseError != nil {
		out.ThrowResponseError = o.ThrowResponseError
	}
	return out
}

// validate checks struct tags and the rules that span fields.
func (o *Options) validate() error {
	v := validation.New()
	v.Merge("", validation.Struct(o))

	bodies := 0
	for _, set := range []bool{o.Body != nil, o.Form != nil, o.FormData != nil, len(o.Multipart) > 0} {
		if set {
			bodies++
		}
	}
	if bodies > 1 {
		v.AddError("body", "only one of body, form, form_data and multipart may be set")
	}
	if o.Encoding != "" {
		if enc, _ := charset.Lookup(o.Encoding); enc == nil {
			v.AddError("encoding", fmt.Sprintf("unknown encoding %q", o.Encoding))
		}
	}
	if o.Proxy != "" {
		if err := checkProxyScheme(o.Proxy); err != nil {
			v.AddError("proxy", err.Error())
		}
	}
	if o.TLS != nil {
		if err := o.TLS.Validate(); err != nil {
			v.AddError("tls", err.Error())
		}
	}
	return v.Err()
}

func checkProxyScheme(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
		return nil
	default:
		return errors.New("unsupported proxy scheme " + u.Scheme)
	}
}

// setHeader sets name in h, matching existing keys case-insensitively.
// With clobber false an existing value is kept.
func setHeader(h map[string]string, name, value string, clobber bool) {
	for k := range h {
		if strings.EqualFold(k, name) {
			if !clobber {
				return
			}
			delete(h, k)
		}
	}
	h[name] = value
}
