// Package handler provides the admin HTTP handlers for respkv.
//
// This package contains handlers for:
//
//   - health.go: liveness and readiness checks
//   - admin.go: keyspace and connection summary, active expiry trigger,
//     effective configuration
//
// JSON responses share the Response envelope. /metrics is served by the
// router directly in Prometheus format.
package handler
