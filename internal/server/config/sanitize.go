package config

import (
	"reflect"
	"strings"
	"time"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	if sanitized.Server.Redis.Password != "" {
		sanitized.Server.Redis.Password = maskSecret(sanitized.Server.Redis.Password)
	}
	return &sanitized
}

// Flatten returns the sanitized config keyed by dotted koanf paths, for
// example "server.redis.addr". Durations are rendered as strings.
func Flatten(cfg *ServerConfig) map[string]any {
	out := make(map[string]any)
	flatten(reflect.ValueOf(*Sanitize(cfg)), "", out)
	return out
}

var durationType = reflect.TypeOf(time.Duration(0))

func flatten(v reflect.Value, prefix string, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("koanf")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		f := v.Field(i)
		switch {
		case f.Kind() == reflect.Struct:
			flatten(f, key, out)
		case f.Type() == durationType:
			out[key] = time.Duration(f.Int()).String()
		default:
			out[key] = f.Interface()
		}
	}
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
