// Package repl provides interactive mode for respkv-cli.
//
//   - repl.go: read-eval-print loop
//   - split.go: redis-cli compatible argument splitting
//   - completer.go: command name lookup for help
//   - history.go: command history persistence
package repl
