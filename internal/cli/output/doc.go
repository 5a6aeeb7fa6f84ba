// Package output provides output formatting for respkv-cli.
//
//   - reply.go: RESP replies rendered like redis-cli (human or raw)
//   - formatter.go: Formatter interface and factory for admin results
//   - table.go, json.go, yaml.go: the admin result formats
package output
