package httpclient

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// Stream is the low-level side of a request: a writable request body, flow
// control over the response body, cancellation and event listeners.
//
// Listeners run on the dispatch goroutine in registration order and must
// not block.
type Stream struct {
	mu        sync.Mutex
	started   bool
	destroyed bool
	run       func()
	cancel    context.CancelCauseFunc

	pr *io.PipeReader
	pw *io.PipeWriter

	// paused is non-nil while paused and closed on resume.
	paused chan struct{}

	onRequest  []func(*http.Request)
	onResponse []func(*http.Response)
	onData     []func([]byte)
	onError    []func(error)
	onComplete []func(*http.Response, []byte)
}

func newStream(run func(), cancel context.CancelCauseFunc) *Stream {
	return &Stream{run: run, cancel: cancel}
}

// start launches dispatch once.
func (s *Stream) start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.run()
}

// Started reports whether dispatch has begun.
func (s *Stream) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// mutate runs fn while holding the lock if dispatch has not begun.
func (s *Stream) mutate(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	fn()
	return nil
}

// Write streams p as part of the request body and starts dispatch. The
// first Write must come before any other start; the body is sent chunked
// and is finished by End.
func (s *Stream) Write(p []byte) (int, error) {
	pw, err := s.writer()
	if err != nil {
		return 0, err
	}
	s.start()
	return pw.Write(p)
}

// End writes the optional final chunks, closes the request body and starts
// dispatch. Without a streamed body and without chunks it only starts
// dispatch.
func (s *Stream) End(chunks ...[]byte) error {
	s.mu.Lock()
	hasPipe := s.pw != nil
	s.mu.Unlock()

	if !hasPipe && len(chunks) == 0 {
		s.start()
		return nil
	}

	pw, err := s.writer()
	if err != nil {
		return err
	}
	s.start()
	for _, c := range chunks {
		if _, err := pw.Write(c); err != nil {
			return err
		}
	}
	return pw.Close()
}

func (s *Stream) writer() (*io.PipeWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pw != nil {
		return s.pw, nil
	}
	if s.started || s.destroyed {
		return nil, ErrNotWritable
	}
	s.pr, s.pw = io.Pipe()
	return s.pw, nil
}

// upload returns the streamed request body, or nil.
func (s *Stream) upload() io.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pr == nil {
		return nil
	}
	return s.pr
}

// closeUpload fails pending writers once the request is settled.
func (s *Stream) closeUpload(err error) {
	s.mu.Lock()
	pr := s.pr
	s.mu.Unlock()
	if pr == nil {
		return
	}
	if err == nil {
		err = io.ErrClosedPipe
	}
	_ = pr.CloseWithError(err)
}

// Pause stops delivery of response data until Resume.
func (s *Stream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused == nil {
		s.paused = make(chan struct{})
	}
}

// Resume continues delivery of response data.
func (s *Stream) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused != nil {
		close(s.paused)
		s.paused = nil
	}
}

// IsPaused reports whether data delivery is paused.
func (s *Stream) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused != nil
}

// waitResumed blocks while paused.
func (s *Stream) waitResumed(ctx context.Context) error {
	s.mu.Lock()
	ch := s.paused
	s.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Abort cancels the request. The result settles with a RequestError whose
// code is ErrCodeAborted unless it had already settled.
func (s *Stream) Abort() {
	s.cancel(ErrAborted)
	s.start()
}

// Destroy aborts the request, fails any pending body writes and drops all
// listeners.
func (s *Stream) Destroy() {
	s.Abort()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	if s.pw != nil {
		_ = s.pw.CloseWithError(ErrAborted)
	}
	s.onRequest, s.onResponse, s.onData, s.onError, s.onComplete = nil, nil, nil, nil, nil
}

// OnRequest registers fn to run with the built request just before it is
// sent.
func (s *Stream) OnRequest(fn func(*http.Request)) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = append(s.onRequest, fn)
	return s
}

// OnResponse registers fn to run when response headers arrive.
func (s *Stream) OnResponse(fn func(*http.Response)) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResponse = append(s.onResponse, fn)
	return s
}

// OnData registers fn to run for each chunk of the response body. The chunk
// is not reused.
func (s *Stream) OnData(fn func([]byte)) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onData = append(s.onData, fn)
	return s
}

// OnError registers fn to run when the request fails.
func (s *Stream) OnError(fn func(error)) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
	return s
}

// OnComplete registers fn to run after the whole body has been read.
func (s *Stream) OnComplete(fn func(*http.Response, []byte)) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
	return s
}

func (s *Stream) emitRequest(req *http.Request) {
	s.mu.Lock()
	fns := s.onRequest
	s.mu.Unlock()
	for _, fn := range fns {
		fn(req)
	}
}

func (s *Stream) emitResponse(resp *http.Response) {
	s.mu.Lock()
	fns := s.onResponse
	s.mu.Unlock()
	for _, fn := range fns {
		fn(resp)
	}
}

func (s *Stream) emitData(chunk []byte) {
	s.mu.Lock()
	fns := s.onData
	s.mu.Unlock()
	for _, fn := range fns {
		fn(chunk)
	}
}

func (s *Stream) emitError(err error) {
	s.mu.Lock()
	fns := s.onError
	s.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (s *Stream) emitComplete(resp *http.Response, body []byte) {
	s.mu.Lock()
	fns := s.onComplete
	s.mu.Unlock()
	for _, fn := range fns {
		fn(resp, body)
	}
}
