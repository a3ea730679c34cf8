// Package httpclient is a typed request layer over net/http.
//
// Every request is a Handle: it is returned before anything is sent, so
// listeners and mutators can be attached first. Dispatch starts on
// Handle.Start, on the first Stream Write or End, or on the first
// Future.Wait. The result settles once with a *Response[T], a
// *ResponseError (status 400 and above in strict mode) or a *RequestError
// (transport failure, abort, timeout, invalid options, undecodable body).
//
// # Shorthand verbs
//
//	resp, err := httpclient.Get(ctx, "https://api.example.com/users", nil)
//	fmt.Println(resp.StatusCode(), resp.ContentType(), resp.Content())
//
//	user, err := httpclient.JSON[User](ctx, "https://api.example.com/users/1", nil)
//
// # Handles
//
//	h := httpclient.Create[[]byte](ctx, url, &httpclient.Options{Method: "PUT"})
//	h.Stream().OnData(func(b []byte) { progress += len(b) })
//	_ = h.SetHeader("X-Trace", id, true)
//	h.Stream().Write(chunk1)
//	h.Stream().End(chunk2)
//	resp, err := h.Wait(ctx)
//
// # Clients
//
// The package-level functions use DefaultClient. A Client carries its own
// defaults baseline and strict-mode switch:
//
//	c, err := httpclient.NewClient(httpclient.Config{
//	    BaseURL:            "https://api.example.com",
//	    Timeout:            10 * time.Second,
//	    ThrowResponseError: true,
//	})
//	resp, err := c.Get(ctx, "/users", nil)
//	if httpclient.IsNotFound(err) { ... }
package httpclient
