// Package connection provides server connections for respkv-cli.
//
//   - client.go: RESP client over TCP
//   - manager.go: lazily dialed, reconnecting client used by the REPL
//   - http.go: admin HTTP client
package connection
