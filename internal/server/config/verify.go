package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStorage(&cfg.Storage),
		verifyProtocol(&cfg.Protocol),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.ReadTimeout < 0 || cfg.Redis.WriteTimeout < 0 || cfg.Redis.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis timeouts must not be negative"))
	}
	if cfg.Redis.MaxClients < 0 {
		errs = append(errs, errors.New("server.redis.max_clients must not be negative"))
	}
	if cfg.HTTP.Enabled {
		if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.HTTP.Addr == cfg.Redis.Addr {
			errs = append(errs, errors.New("server.http.addr conflicts with server.redis.addr"))
		}
		if cfg.HTTP.AdminRateLimit < 0 {
			errs = append(errs, errors.New("server.http.admin_rate_limit must not be negative"))
		}
		for _, entry := range cfg.HTTP.AllowList {
			if err := verifyAllowEntry(entry); err != nil {
				errs = append(errs, fmt.Errorf("server.http.allow_list: %w", err))
			}
		}
		for _, entry := range cfg.HTTP.TrustedProxies {
			if err := verifyAllowEntry(entry); err != nil {
				errs = append(errs, fmt.Errorf("server.http.trusted_proxies: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func verifyAllowEntry(entry string) error {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err
	}
	_, err := netip.ParseAddr(entry)
	return err
}

func verifyStorage(cfg *StorageSection) error {
	var errs []error
	if n := cfg.ShardCount; n <= 0 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("storage.shard_count must be a power of two, got %d", n))
	}
	if cfg.SweepInterval < 0 {
		errs = append(errs, errors.New("storage.sweep_interval must not be negative"))
	}
	if cfg.SweepInterval > 0 && cfg.SweepSample < 1 {
		errs = append(errs, errors.New("storage.sweep_sample must be at least 1"))
	}
	return errors.Join(errs...)
}

func verifyProtocol(cfg *ProtocolSection) error {
	var errs []error
	if cfg.QueryBufferLimit < 1 {
		errs = append(errs, errors.New("protocol.query_buffer_limit must be positive"))
	}
	if cfg.MaxBulkLen < 1 {
		errs = append(errs, errors.New("protocol.max_bulk_len must be positive"))
	}
	if cfg.MaxMultiBulkLen < 1 {
		errs = append(errs, errors.New("protocol.max_multibulk_len must be positive"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Format)
	}
}
