// Package command provides the respkv-cli application.
//
// It uses urfave/cli/v2. Arguments after the global flags are sent to the
// server as one command; without arguments an interactive REPL starts.
// The admin subcommand talks to the admin HTTP server.
package command
