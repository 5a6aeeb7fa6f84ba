package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"requirepass",
	"secret",
	"auth",
	"credential",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces the value of sensitive attributes, recursing
// into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			redacted[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// RedactArgs returns a printable form of a command frame for logging. The
// arguments of AUTH are replaced, and long arguments are truncated.
func RedactArgs(args [][]byte) []string {
	const maxArgLen = 64
	out := make([]string, len(args))
	for i, a := range args {
		switch {
		case i > 0 && strings.EqualFold(string(args[0]), "auth"):
			out[i] = redactedValue
		case len(a) > maxArgLen:
			out[i] = string(a[:maxArgLen]) + "..."
		default:
			out[i] = string(a)
		}
	}
	return out
}
