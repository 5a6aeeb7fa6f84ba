package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/server/config"
)

func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "no flags",
			args: nil,
			want: map[string]any{},
		},
		{
			name: "redis flags",
			args: []string{"--addr", ":7000", "--password", "pw", "--max-clients", "5"},
			want: map[string]any{
				"server.redis.addr":        ":7000",
				"server.redis.password":    "pw",
				"server.redis.max_clients": 5,
			},
		},
		{
			name: "http addr enables http",
			args: []string{"--http-addr", ":9000", "--shards", "8"},
			want: map[string]any{
				"server.http.enabled": true,
				"server.http.addr":    ":9000",
				"storage.shard_count": 8,
			},
		},
		{
			name: "log flags",
			args: []string{"--log-level", "debug", "--log-format", "text"},
			want: map[string]any{
				"log.level":  "debug",
				"log.format": "text",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			app := newApp()
			app.Action = func(c *cli.Context) error {
				got = flagOverrides(c)
				return nil
			}
			if err := app.Run(append([]string{"respkv-server"}, tt.args...)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flagOverrides() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.env")

	if err := loadEnvFile("", true); err != nil {
		t.Errorf("empty path: error = %v", err)
	}
	if err := loadEnvFile(missing, false); err != nil {
		t.Errorf("missing default file: error = %v", err)
	}
	if err := loadEnvFile(missing, true); err == nil {
		t.Error("missing explicit file: expected error")
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("RESPKV_TEST_ENV_FILE=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESPKV_TEST_ENV_FILE", "")
	os.Unsetenv("RESPKV_TEST_ENV_FILE")
	if err := loadEnvFile(path, true); err != nil {
		t.Fatalf("loadEnvFile() error = %v", err)
	}
	if got := os.Getenv("RESPKV_TEST_ENV_FILE"); got != "loaded" {
		t.Errorf("RESPKV_TEST_ENV_FILE = %q, want loaded", got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := "server:\n  redis:\n    addr: 127.0.0.1:7001\nstorage:\n  sweep_interval: 250ms\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	var (
		got    *config.ServerConfig
		gotErr error
	)
	app := newApp()
	app.Action = func(c *cli.Context) error {
		got, _, gotErr = loadConfig(c)
		return nil
	}
	args := []string{"respkv-server", "-c", path, "--env-file", "", "--max-clients", "3"}
	if err := app.Run(args); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gotErr != nil {
		t.Fatalf("loadConfig() error = %v", gotErr)
	}
	if got.Server.Redis.Addr != "127.0.0.1:7001" {
		t.Errorf("Addr = %q", got.Server.Redis.Addr)
	}
	if got.Server.Redis.MaxClients != 3 {
		t.Errorf("MaxClients = %d, want 3", got.Server.Redis.MaxClients)
	}
	if got.Storage.SweepInterval != 250*time.Millisecond {
		t.Errorf("SweepInterval = %v", got.Storage.SweepInterval)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	var gotErr error
	app := newApp()
	app.Action = func(c *cli.Context) error {
		_, _, gotErr = loadConfig(c)
		return nil
	}
	if err := app.Run([]string{"respkv-server", "--env-file", "", "--shards", "3"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gotErr == nil {
		t.Error("expected error for non power-of-two shard count")
	}
}

func TestRedisConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Redis.Addr = ":7002"
	cfg.Server.Redis.MaxClients = 9
	cfg.Protocol.MaxBulkLen = 1024

	rc := redisConfig(cfg)
	if rc.Addr != ":7002" || rc.MaxClients != 9 || rc.MaxBulkLen != 1024 {
		t.Errorf("redisConfig() = %+v", rc)
	}
	if rc.QueryBufferLimit != cfg.Protocol.QueryBufferLimit {
		t.Errorf("QueryBufferLimit = %d", rc.QueryBufferLimit)
	}
}
