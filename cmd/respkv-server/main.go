package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/command"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/httpserver/handler"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/secret"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "in-memory RESP key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to configuration file (YAML)"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before environment parsing"},
			&cli.StringFlag{Name: "addr", Usage: "RESP listen address (server.redis.addr)"},
			&cli.StringFlag{Name: "password", Usage: "require AUTH with this password (server.redis.password)"},
			&cli.IntFlag{Name: "max-clients", Usage: "maximum concurrent clients, 0 for unlimited"},
			&cli.StringFlag{Name: "http-addr", Usage: "enable the admin HTTP server on this address"},
			&cli.IntFlag{Name: "shards", Usage: "store shard count, a power of two"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "json or text"},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	set := func(flag, key string, v any) {
		if c.IsSet(flag) {
			m[key] = v
		}
	}
	set("addr", "server.redis.addr", c.String("addr"))
	set("password", "server.redis.password", c.String("password"))
	set("max-clients", "server.redis.max_clients", c.Int("max-clients"))
	set("shards", "storage.shard_count", c.Int("shards"))
	set("log-level", "log.level", c.String("log-level"))
	set("log-format", "log.format", c.String("log-format"))
	if c.IsSet("http-addr") {
		m["server.http.enabled"] = true
		m["server.http.addr"] = c.String("http-addr")
	}
	return m
}

// loadEnvFile loads a dotenv file. A missing file is ignored unless it was
// named explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return err
}

// loadConfig loads and validates the configuration.
func loadConfig(c *cli.Context) (*config.ServerConfig, *confloader.Loader, error) {
	if err := loadEnvFile(c.String("env-file"), c.IsSet("env-file")); err != nil {
		return nil, nil, fmt.Errorf("load env file: %w", err)
	}

	opts := []confloader.Option{confloader.WithOverrides(flagOverrides(c))}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	r := cfg.Server.Redis
	return &redisserver.Config{
		Addr:             r.Addr,
		ReadTimeout:      r.ReadTimeout,
		WriteTimeout:     r.WriteTimeout,
		IdleTimeout:      r.IdleTimeout,
		MaxClients:       r.MaxClients,
		QueryBufferLimit: cfg.Protocol.QueryBufferLimit,
		MaxBulkLen:       cfg.Protocol.MaxBulkLen,
		MaxMultiBulkLen:  cfg.Protocol.MaxMultiBulkLen,
	}
}

func run(c *cli.Context) error {
	cfg, loader, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.ShortCommit(),
		"config", loader.FilePath())
	log.Debug("effective configuration", "config", config.Flatten(cfg))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	store := memory.New(memory.WithShardCount(cfg.Storage.ShardCount))
	go store.RunSweeper(ctx, cfg.Storage.SweepInterval, cfg.Storage.SweepSample)

	metrics := metric.NewRegistry()
	if err := metrics.RegisterKeyspace(store); err != nil {
		return fmt.Errorf("register keyspace metrics: %w", err)
	}

	dispatchOpts := []command.Option{command.WithObserver(metrics)}
	if pw := cfg.Server.Redis.Password; pw != "" {
		v, err := secret.NewVerifier(pw)
		if err != nil {
			return fmt.Errorf("init auth: %w", err)
		}
		dispatchOpts = append(dispatchOpts, command.WithAuthenticator(v))
	}

	sh := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))
	sh.OnShutdown("sweeper", func(context.Context) error {
		cancel()
		return nil
	})

	redis := redisserver.New(redisConfig(cfg), store, log,
		redisserver.WithConnObserver(metrics),
		redisserver.WithDispatcherOptions(dispatchOpts...),
	)
	if err := redis.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	sh.OnShutdown("redis", redis.Shutdown)

	var ready atomic.Bool
	if cfg.Server.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Handler: handler.Config{
				Store:       store,
				Server:      redis,
				Ready:       ready.Load,
				Settings:    config.Flatten(cfg),
				SweepSample: cfg.Storage.SweepSample,
			},
			Metrics:        metrics.Handler(),
			Logger:         log,
			AdminAllowList: cfg.Server.HTTP.AllowList,
			TrustedProxies: cfg.Server.HTTP.TrustedProxies,
			AdminRateLimit: cfg.Server.HTTP.AdminRateLimit,
		})
		hs := httpserver.New(cfg.Server.HTTP.Addr, router, log)
		if err := hs.Start(); err != nil {
			_ = sh.Shutdown()
			return fmt.Errorf("start http server: %w", err)
		}
		sh.OnShutdown("http", hs.Shutdown)
	}

	if path := loader.FilePath(); path != "" {
		if err := watchConfig(path, loader, log, sh); err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	ready.Store(true)
	sh.OnShutdown("readiness", func(context.Context) error {
		ready.Store(false)
		return nil
	})

	log.Info("server started", "addr", redis.Addr().String())
	if err := sh.Wait(ctx); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// watchConfig reloads the file on change and applies the log level. Every
// other setting stays fixed until restart.
func watchConfig(path string, loader *confloader.Loader, log logger.Logger, sh *shutdown.Handler) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}
	w.OnChange(func(string) { reloadLogLevel(loader, log) })
	w.StartAsync()
	sh.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
	return nil
}

func reloadLogLevel(loader *confloader.Loader, log logger.Logger) {
	fresh := config.Default()
	if err := loader.Reload(fresh); err != nil {
		log.Warn("config reload failed", "error", err)
		return
	}
	before := logger.GetLevel()
	if err := logger.SetLevel(fresh.Log.Level); err != nil {
		log.Warn("config reload: invalid log level", "level", fresh.Log.Level, "error", err)
		return
	}
	if after := logger.GetLevel(); after != before {
		log.Info("log level changed", "from", before, "to", after)
	}
}
