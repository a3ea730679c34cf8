// Package echoserver is a small request-inspection server built on gin.
//
// It reflects requests as JSON (/anything), and serves fixed statuses,
// redirect chains, cookies, compressed bodies, delays, byte and line
// streams, charset-encoded text and auth challenges. webreq serve runs it
// locally; the httpclient tests run it under httptest.
//
//	srv := echoserver.New(cfg, log)
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(ctx)
package echoserver
