package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/webrequest/echoserver"
)

func TestHandleDoesNotStartUntilAsked(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[string](c, context.Background(), ts.URL+"/anything", nil)
	if h.Stream().Started() {
		t.Fatal("handle started on creation")
	}
	if _, err := h.Response().Result(); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	select {
	case <-h.Response().Done():
		t.Fatal("future settled before start")
	default:
	}

	h.Start().Start()
	<-h.Response().Done()
	resp, err := h.Response().Result()
	if err != nil || resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected result %v", err)
	}
}

func TestHandleMutators(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[echoserver.Echo](c, context.Background(), ts.URL+"/anything", &Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Keep": "orig"},
		Query:   url.Values{"q": {"orig"}},
	})
	mustNil(t, h.SetHeader("x-keep", "new", false))
	mustNil(t, h.SetHeader("X-Added", "1", true))
	mustNil(t, h.SetHeaders(map[string]string{"X-Bulk": "b"}))
	mustNil(t, h.Qs(url.Values{"q": {"new"}, "p": {"1"}}, false))
	mustNil(t, h.SetForm(url.Values{"f": {"v"}}))
	mustNil(t, h.SetJSON(nil))

	resp, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	echo := resp.Content()
	if echo.Headers["X-Keep"] != "orig" || echo.Headers["X-Added"] != "1" || echo.Headers["X-Bulk"] != "b" {
		t.Errorf("unexpected headers %v", echo.Headers)
	}
	if echo.Query["q"][0] != "orig" || echo.Query["p"][0] != "1" {
		t.Errorf("unexpected query %v", echo.Query)
	}
	if echo.Form["f"][0] != "v" || echo.Headers["Accept"] != "application/json" {
		t.Errorf("expected json-mode form request, got form=%v headers=%v", echo.Form, echo.Headers)
	}

	for name, err := range map[string]error{
		"SetHeader":    h.SetHeader("X", "1", true),
		"SetHeaders":   h.SetHeaders(map[string]string{"X": "1"}),
		"Qs":           h.Qs(url.Values{"a": {"b"}}, true),
		"SetAuth":      h.SetAuth("u", "p", ""),
		"SetJar":       h.SetJar(nil),
		"SetJSON":      h.SetJSON(map[string]int{"a": 1}),
		"SetForm":      h.SetForm(url.Values{}),
		"SetMultipart": h.SetMultipart([]Part{{Body: "x"}}),
	} {
		if !errors.Is(err, ErrAlreadyStarted) {
			t.Errorf("%s after dispatch: expected ErrAlreadyStarted, got %v", name, err)
		}
	}
}

func TestSetJSONBody(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[echoserver.Echo](c, context.Background(), ts.URL+"/anything", &Options{Method: http.MethodPost, Body: "old"})
	mustNil(t, h.SetJSON(map[string]int{"n": 1}))
	resp, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Content().Body; got != `{"n":1}` {
		t.Errorf("expected json body, got %q", got)
	}
}

func TestStreamUpload(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[echoserver.Echo](c, context.Background(), ts.URL+"/anything", &Options{Method: http.MethodPut})
	s := h.Stream()
	if _, err := s.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Started() {
		t.Error("expected Write to start dispatch")
	}
	if err := s.End([]byte("world")); err != nil {
		t.Fatalf("End: %v", err)
	}

	resp, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Content(); got.Method != http.MethodPut || got.Body != "hello world" {
		t.Errorf("unexpected upload echo %s %q", got.Method, got.Body)
	}
}

func TestStreamEndWithoutBodyStarts(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[string](c, context.Background(), ts.URL+"/anything", nil)
	mustNil(t, h.Stream().End())
	if _, err := h.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Stream().Write([]byte("late")); !errors.Is(err, ErrNotWritable) {
		t.Errorf("expected ErrNotWritable, got %v", err)
	}
}

func TestStreamEvents(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	var mu sync.Mutex
	var events []string
	record := func(e string) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	var data strings.Builder
	h := CreateWith[string](c, context.Background(), ts.URL+"/stream/3", nil)
	h.Stream().
		OnRequest(func(r *http.Request) { record("request " + r.Method) }).
		OnResponse(func(r *http.Response) { record("response " + r.Status) }).
		OnData(func(b []byte) { data.Write(b) }).
		OnError(func(error) { record("error") }).
		OnComplete(func(r *http.Response, body []byte) { record("complete " + string(body)) })

	resp, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := "line 0\nline 1\nline 2\n"
	if resp.Content() != body || data.String() != body {
		t.Errorf("unexpected body %q data %q", resp.Content(), data.String())
	}
	mu.Lock()
	defer mu.Unlock()
	want := []string{"request GET", "response 200 OK", "complete " + body}
	if strings.Join(events, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected events %q", events)
	}
}

func TestStreamErrorEvent(t *testing.T) {
	c := newTestClient(t, Config{})

	var got error
	h := CreateWith[string](c, context.Background(), "http://127.0.0.1:1/unreachable", nil)
	h.Stream().OnError(func(err error) { got = err })
	_, err := h.Wait(context.Background())
	if err == nil || got != err {
		t.Fatalf("expected error event with the settled error, got %v and %v", got, err)
	}
}

func TestStreamAbort(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[string](c, context.Background(), ts.URL+"/delay/5s", nil)
	sent := make(chan struct{})
	h.Stream().OnRequest(func(*http.Request) { close(sent) })
	h.Start()
	<-sent
	time.Sleep(20 * time.Millisecond)
	h.Stream().Abort()

	_, err := h.Wait(context.Background())
	if !IsAborted(err) {
		t.Fatalf("expected aborted, got %v", err)
	}
}

func TestStreamAbortBeforeStart(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[string](c, context.Background(), ts.URL+"/anything", nil)
	h.Stream().Abort()
	if _, err := h.Wait(context.Background()); !IsAborted(err) {
		t.Fatalf("expected aborted, got %v", err)
	}
}

func TestStreamDestroy(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	var completed atomic.Bool
	h := CreateWith[string](c, context.Background(), ts.URL+"/anything", &Options{Method: http.MethodPost})
	h.Stream().OnComplete(func(*http.Response, []byte) { completed.Store(true) })
	if _, err := h.Stream().Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	h.Stream().Destroy()

	if _, err := h.Wait(context.Background()); !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if completed.Load() {
		t.Error("complete listener ran after destroy")
	}
	if _, err := h.Stream().Write([]byte("more")); err == nil {
		t.Error("expected write after destroy to fail")
	}
}

func TestStreamPauseResume(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	var chunks atomic.Int32
	h := CreateWith[string](c, context.Background(), ts.URL+"/stream/5", nil)
	s := h.Stream()
	s.Pause()
	if !s.IsPaused() {
		t.Fatal("expected paused")
	}
	gotResponse := make(chan struct{})
	s.OnResponse(func(*http.Response) { close(gotResponse) })
	s.OnData(func([]byte) { chunks.Add(1) })
	h.Start()

	<-gotResponse
	time.Sleep(50 * time.Millisecond)
	if n := chunks.Load(); n != 0 {
		t.Fatalf("received %d chunks while paused", n)
	}
	select {
	case <-h.Response().Done():
		t.Fatal("settled while paused")
	default:
	}

	s.Resume()
	if s.IsPaused() {
		t.Error("expected resumed")
	}
	resp, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks.Load() == 0 || strings.Count(resp.Content(), "\n") != 5 {
		t.Errorf("unexpected content %q after %d chunks", resp.Content(), chunks.Load())
	}
}

func TestWaitContextDoesNotAbort(t *testing.T) {
	ts := newEchoServer(t)
	c := newTestClient(t, Config{})

	h := CreateWith[string](c, context.Background(), ts.URL+"/delay/100ms", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait deadline, got %v", err)
	}

	resp, err := h.Wait(context.Background())
	if err != nil || resp.StatusCode() != http.StatusOK {
		t.Fatalf("expected request to complete, got %v", err)
	}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
