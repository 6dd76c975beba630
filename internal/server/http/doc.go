// Package httpserver provides the REST gateway for bytelog with raw
// append/fetch endpoints, JSON stats, and SSE tailing of new bytes.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
