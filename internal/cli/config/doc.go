// Package config provides respkv-cli configuration.
//
// Values come from ~/.respkv/cli.yaml, then RESPKV_CLI_* environment
// variables, then command-line flags.
package config
