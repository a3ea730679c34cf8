package httpclient

import (
	"context"
	"sync"
)

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// DefaultClient returns the process-wide client used by the package-level
// functions.
func DefaultClient() *Client {
	defaultClientOnce.Do(func() {
		c, err := NewClient(Config{})
		if err != nil {
			// The zero Config is always valid.
			panic(err)
		}
		defaultClient = c
	})
	return defaultClient
}

// Create returns a handle for a request on the default client.
func Create[T any](ctx context.Context, address string, opts *Options, content ...any) *Handle[T] {
	return CreateWith[T](DefaultClient(), ctx, address, opts, content...)
}

// JSON sends a JSON-mode request on the default client and returns only
// the decoded body.
func JSON[T any](ctx context.Context, address string, opts *Options) (T, error) {
	return JSONWith[T](DefaultClient(), ctx, address, opts)
}

// Get sends a GET request on the default client.
func Get(ctx context.Context, address string, opts *Options) (*Response[string], error) {
	return DefaultClient().Get(ctx, address, opts)
}

// Post sends a POST request on the default client.
func Post(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return DefaultClient().Post(ctx, address, opts, content...)
}

// Put sends a PUT request on the default client.
func Put(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return DefaultClient().Put(ctx, address, opts, content...)
}

// Patch sends a PATCH request on the default client.
func Patch(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return DefaultClient().Patch(ctx, address, opts, content...)
}

// Delete sends a DELETE request on the default client.
func Delete(ctx context.Context, address string, opts *Options, content ...any) (*Response[string], error) {
	return DefaultClient().Delete(ctx, address, opts, content...)
}

// Head sends a HEAD request on the default client.
func Head(ctx context.Context, address string, opts *Options) (*Response[struct{}], error) {
	return DefaultClient().Head(ctx, address, opts)
}

// Defaults installs a baseline on the default client. See Client.SetDefaults.
func Defaults(opts Options) {
	DefaultClient().SetDefaults(opts)
}

// ResetDefaults clears the default client's baseline.
func ResetDefaults() {
	DefaultClient().ResetDefaults()
}

// SetThrowResponseError switches strict mode on the default client.
func SetThrowResponseError(on bool) {
	DefaultClient().SetThrowResponseError(on)
}

// ThrowResponseError reports the default client's strict mode.
func ThrowResponseError() bool {
	return DefaultClient().ThrowResponseError()
}
