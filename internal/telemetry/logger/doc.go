// Package logger provides structured logging for respkv.
//
// This package wraps log/slog:
//
//   - logger.go: logger construction, level control and the global default
//   - context.go: context-aware logging with connection and request IDs
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Runtime log level changes (config file reload)
//   - Automatic masking of passwords and AUTH arguments
//   - Context propagation of per-connection IDs
package logger
