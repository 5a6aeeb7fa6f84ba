// Package shutdown provides graceful shutdown for respkv-server.
//
// Hooks are registered as components start and run in reverse order when
// SIGINT or SIGTERM arrives (or the parent context ends), all under one
// shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
