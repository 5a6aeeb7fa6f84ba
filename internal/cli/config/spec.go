package config

import "time"

// CLIConfig is the configuration for respkv-cli.
type CLIConfig struct {
	// Addr is the RESP server address.
	Addr string `koanf:"addr"`
	// Password is sent with AUTH after connecting.
	Password string `koanf:"password"`
	// Admin is the admin HTTP server address.
	Admin string `koanf:"admin"`
	// Output selects the admin result format (table, json, yaml).
	Output string `koanf:"output"`
	// Timeout bounds dialing and each request.
	Timeout time.Duration `koanf:"timeout"`
	// HistoryFile stores REPL history; empty disables persistence.
	HistoryFile string `koanf:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Addr:    "127.0.0.1:6380",
		Admin:   "127.0.0.1:9180",
		Output:  "table",
		Timeout: 5 * time.Second,
	}
}
