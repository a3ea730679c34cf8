package httpclient

import "context"

// Future is the result side of a request. It settles exactly once.
type Future[T any] struct {
	start func()
	done  chan struct{}
	resp  *Response[T]
	err   error
}

func newFuture[T any](start func()) *Future[T] {
	return &Future[T]{start: start, done: make(chan struct{})}
}

// Wait starts dispatch if needed and blocks until the request settles or
// ctx is done. Canceling ctx stops waiting; it does not abort the request.
func (f *Future[T]) Wait(ctx context.Context) (*Response[T], error) {
	f.start()
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when the request settles. It does not start dispatch.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled outcome, or ErrPending.
func (f *Future[T]) Result() (*Response[T], error) {
	select {
	case <-f.done:
		return f.resp, f.err
	default:
		return nil, ErrPending
	}
}

func (f *Future[T]) settle(resp *Response[T], err error) {
	f.resp, f.err = resp, err
	close(f.done)
}
