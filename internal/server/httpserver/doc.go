// Package httpserver provides the admin HTTP server for respkv.
//
// The server is optional and listens separately from the RESP port:
//
//   - Health endpoints: /health, /ready
//   - Metrics: /metrics (Prometheus text format)
//   - Admin endpoints: /admin/v1/*
//
// Middleware chain: Recover, RequestID, Audit, NetworkACL, RateLimit.
package httpserver
