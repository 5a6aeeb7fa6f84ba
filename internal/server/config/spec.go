package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Protocol ProtocolSection `koanf:"protocol"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the RESP server.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// IdleTimeout of 0 keeps idle connections open forever.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	// Password enables AUTH when non-empty.
	Password string `koanf:"password"`
	// MaxClients of 0 means unlimited.
	MaxClients int `koanf:"max_clients"`
}

// HTTPConfig configures the admin HTTP server.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	// AllowList restricts /admin and /metrics to these IPs or CIDRs.
	// Empty allows every client.
	AllowList []string `koanf:"allow_list"`
	// TrustedProxies are peers whose X-Forwarded-For names the client.
	TrustedProxies []string `koanf:"trusted_proxies"`
	// AdminRateLimit caps admin requests per second (0 = unlimited).
	AdminRateLimit int `koanf:"admin_rate_limit"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// ShardCount must be a power of two.
	ShardCount int `koanf:"shard_count"`
	// SweepInterval is the active expiry period (0 disables the sweeper).
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// SweepSample is the number of keys examined per shard and round.
	SweepSample int `koanf:"sweep_sample"`
}

// ProtocolSection configures RESP limits.
type ProtocolSection struct {
	QueryBufferLimit int `koanf:"query_buffer_limit"`
	MaxBulkLen       int `koanf:"max_bulk_len"`
	MaxMultiBulkLen  int `koanf:"max_multibulk_len"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
