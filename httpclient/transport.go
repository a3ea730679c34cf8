package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// transportSettings are the options that require a dedicated transport.
type transportSettings struct {
	TLS       *TLSConfig
	Proxy     string
	StrictSSL *bool
}

func (s transportSettings) isSet() bool {
	return s.TLS.IsEnabled() || s.Proxy != "" || s.StrictSSL != nil
}

func newTransport(settings transportSettings) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if err := configureTransport(t, settings); err != nil {
		return nil, err
	}
	return t, nil
}

// configureTransport applies TLS material, certificate checking and proxy
// settings to t.
func configureTransport(t *http.Transport, s transportSettings) error {
	insecure := s.StrictSSL != nil && !*s.StrictSSL
	if insecure && !s.TLS.IsEnabled() && t.TLSClientConfig != nil {
		// Keep the inherited roots and certificates.
		t.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // strict_ssl=false
		return applyProxy(t, s.Proxy)
	}

	tlsCfg := s.TLS.Clone()
	if insecure {
		if tlsCfg == nil {
			tlsCfg = &TLSConfig{}
		}
		tlsCfg.SkipVerify = true
	}
	if tlsCfg.IsEnabled() {
		built, err := tlsCfg.Build()
		if err != nil {
			return fmt.Errorf("tls: %w", err)
		}
		t.TLSClientConfig = built
	}

	return applyProxy(t, s.Proxy)
}

// applyProxy routes t through raw. http and https proxies use CONNECT via
// the transport; socks5 proxies replace the dialer.
func applyProxy(t *http.Transport, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		t.Proxy = nil
		if cd, ok := d.(proxy.ContextDialer); ok {
			t.DialContext = cd.DialContext
		} else {
			t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return d.Dial(network, addr)
			}
		}
		return nil
	default:
		return fmt.Errorf("proxy: unsupported scheme %q", u.Scheme)
	}
}

// redirectPolicy builds the CheckRedirect hook for opts.
func redirectPolicy(opts *Options) func(*http.Request, []*http.Request) error {
	limit := opts.MaxRedirects
	if limit == 0 {
		limit = DefaultMaxRedirects
	}
	follow := opts.FollowRedirect == nil || *opts.FollowRedirect

	return func(req *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) > limit {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, limit)
		}
		if !opts.FollowAllRedirects {
			if m := via[0].Method; m != http.MethodGet && m != http.MethodHead {
				return http.ErrUseLastResponse
			}
		}
		if opts.RedirectFunc != nil && !opts.RedirectFunc(req.Response) {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// httpClientFor returns a client for one exchange. Requests with their own
// TLS, proxy or StrictSSL settings get a private transport that is released
// by the returned cleanup.
func (c *Client) httpClientFor(opts *Options) (*http.Client, func(), error) {
	var rt http.RoundTripper = c.transport
	cleanup := func() {}

	settings := transportSettings{TLS: opts.TLS, Proxy: opts.Proxy, StrictSSL: opts.StrictSSL}
	if settings.isSet() {
		t := c.transport.Clone()
		if err := configureTransport(t, settings); err != nil {
			return nil, nil, err
		}
		rt, cleanup = t, t.CloseIdleConnections
	}

	hc := &http.Client{
		Transport:     rt,
		CheckRedirect: redirectPolicy(opts),
		Timeout:       opts.Timeout,
	}
	if opts.Jar != nil {
		hc.Jar = opts.Jar
	}
	return hc, cleanup, nil
}
