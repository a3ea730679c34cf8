package httpclient

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/webrequest/logger"
	"github.com/kbukum/webrequest/observability"
)

// Client owns a transport, a defaults baseline and a strict-mode switch.
// It is safe for concurrent use.
type Client struct {
	config    Config
	transport *http.Transport
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.ClientMetrics

	strict atomic.Bool

	mu       sync.RWMutex
	defaults *Options
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to the "httpclient" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTracer sets the tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithMetrics records request metrics. Disabled by default.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t, err := newTransport(transportSettings{TLS: cfg.TLS, Proxy: cfg.Proxy, StrictSSL: cfg.StrictSSL})
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:    cfg,
		transport: t,
		log:       logger.Get("httpclient"),
		tracer:    observability.Tracer(observability.InstrumentationName),
		defaults:  cfg.Options(),
	}
	c.strict.Store(cfg.ThrowResponseError)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// SetThrowResponseError switches strict mode. In strict mode statuses of
// 400 and above settle with a *ResponseError. Options.ThrowResponseError
// overrides it per request.
func (c *Client) SetThrowResponseError(on bool) {
	c.strict.Store(on)
}

// ThrowResponseError reports whether strict mode is on.
func (c *Client) ThrowResponseError() bool {
	return c.strict.Load()
}

func (c *Client) strictFor(opts *Options) bool {
	if opts.ThrowResponseError != nil {
		return *opts.ThrowResponseError
	}
	return c.strict.Load()
}

// SetDefaults layers opts over the configured baseline. Requests merge
// their own options over the result at dispatch. UseJar without a Jar
// installs one jar shared by all requests.
func (c *Client) SetDefaults(opts Options) {
	d := mergeOptions(c.config.Options(), &opts)
	if d.UseJar && d.Jar == nil {
		d.Jar = NewJar()
	}
	c.mu.Lock()
	c.defaults = d
	c.mu.Unlock()
}

// Defaults returns a copy of the current baseline.
func (c *Client) Defaults() Options {
	return *c.baseline().Clone()
}

// ResetDefaults restores the configured baseline.
func (c *Client) ResetDefaults() {
	d := c.config.Options()
	c.mu.Lock()
	c.defaults = d
	c.mu.Unlock()
}

func (c *Client) baseline() *Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaults
}

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// CreateWith returns a handle for a request to address on c. Dispatch is
// deferred until the handle is started. A non-empty content replaces the
// request body.
func CreateWith[T any](c *Client, ctx context.Context, address string, opts *Options, content ...any) *Handle[T] {
	o := opts.Clone()
	o.URL = address
	if len(content) > 0 {
		clearBody(o)
		o.Body = content[0]
	}
	if o.UseJar && o.Jar == nil {
		o.Jar = NewJar()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	h := &Handle[T]{ID: uuid.NewString(), Options: o}
	h.stream = newStream(func() {
		resp, err := dispatch(ctx, c, h)
		if err != nil {
			h.stream.emitError(err)
		}
		h.stream.closeUpload(err)
		cancel(nil)
		h.future.settle(resp, err)
	}, cancel)
	h.future = newFuture[T](h.stream.start)
	return h
}

// JSONWith sends a JSON-mode request on c and returns only the decoded
// body.
func JSONWith[T any](c *Client, ctx context.Context, address string, opts *Options) (T, error) {
	o := opts.Clone()
	o.JSON = true
	resp, err := send[T](ctx, c, "", address, o, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Content(), nil
}

// send creates, starts and waits for a request. An empty method keeps the
// one in opts.
func send[T any](ctx context.Context, c *Client, method, address string, opts *Options, content []any) (*Response[T], error) {
	o := opts.Clone()
	if method != "" {
		o.Method = method
	}
	// The request observes ctx, so waiting without it still settles.
	return CreateWith[T](c, ctx, address, o, content...).Start().Wait(context.Background())
}

// Get sends a GET request and returns the body as text.
func (c *Client) Get(ctx context.Context, address string, opts *Options) (*Response[string], error) {
	return send[string](ctx, c, http.MethodGet, address, opts, nil)
}

// Post sends a POST request with optional content.
func (c *Client) Post(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return send[string](ctx, c, http.MethodPost, address, opts, content)
}

// Put sends a PUT request with optional content.
func (c *Client) Put(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return send[string](ctx, c, http.MethodPut, address, opts, content)
}

// Patch sends a PATCH request with optional content.
func (c *Client) Patch(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return send[string](ctx, c, http.MethodPatch, address, opts, content)
}

// Delete sends a DELETE request with optional content.
func (c *Client) Delete(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return send[string](ctx, c, http.MethodDelete, address, opts, content)
}

// Head sends a HEAD request. The response has no content.
func (c *Client) Head(ctx context.Context, address string, opts *Options) (*Response[struct{}], error) {
	return send[struct{}](ctx, c, http.MethodHead, address, opts, nil)
}
