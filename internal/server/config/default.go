package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr    = "127.0.0.1:6380"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultMaxClients   = 10000

	DefaultHTTPAddr = "127.0.0.1:9180"

	DefaultShardCount    = 64
	DefaultSweepInterval = 100 * time.Millisecond
	DefaultSweepSample   = 20

	DefaultQueryBufferLimit = 1024 * 1024 * 1024
	DefaultMaxBulkLen       = 512 * 1024 * 1024
	DefaultMaxMultiBulkLen  = 1024 * 1024

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
				MaxClients:   DefaultMaxClients,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Storage: StorageSection{
			ShardCount:    DefaultShardCount,
			SweepInterval: DefaultSweepInterval,
			SweepSample:   DefaultSweepSample,
		},
		Protocol: ProtocolSection{
			QueryBufferLimit: DefaultQueryBufferLimit,
			MaxBulkLen:       DefaultMaxBulkLen,
			MaxMultiBulkLen:  DefaultMaxMultiBulkLen,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
