// Package main provides the entry point for respkv-server.
//
// respkv-server is an in-memory key-value server speaking RESP2. It
// optionally serves health, metrics and admin endpoints over HTTP.
//
// Configuration is read from defaults, a YAML file, RESPKV_* environment
// variables (optionally from a .env file) and command-line flags, in
// increasing priority.
package main
