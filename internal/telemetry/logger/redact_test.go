package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"password", slog.String("password", "hunter2"), redactedValue},
		{"requirepass", slog.String("requirepass", "hunter2"), redactedValue},
		{"mixed case", slog.String("Auth_Secret", "x"), redactedValue},
		{"empty value kept", slog.String("password", ""), ""},
		{"normal key", slog.String("addr", ":6380"), ":6380"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("redactSensitive(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := slog.Group("config", slog.String("requirepass", "s3cret"), slog.Int("port", 6380))
	got := redactSensitive(a).Value.Group()
	if got[0].Value.String() != redactedValue {
		t.Errorf("group member not redacted: %v", got[0])
	}
	if got[1].Value.Int64() != 6380 {
		t.Errorf("non-sensitive member changed: %v", got[1])
	}
}

func TestRedactThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})
	l.Info("config loaded", "requirepass", "s3cret")
	if strings.Contains(buf.String(), "s3cret") {
		t.Errorf("password leaked: %s", buf.String())
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"password":      true,
		"REQUIREPASS":   true,
		"auth":          true,
		"client_secret": true,
		"addr":          false,
		"key":           false,
	} {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedactArgs(t *testing.T) {
	long := strings.Repeat("v", 100)
	tests := []struct {
		name string
		args [][]byte
		want []string
	}{
		{"auth", [][]byte{[]byte("AUTH"), []byte("pw")}, []string{"AUTH", redactedValue}},
		{"auth user", [][]byte{[]byte("auth"), []byte("default"), []byte("pw")}, []string{"auth", redactedValue, redactedValue}},
		{"set", [][]byte{[]byte("SET"), []byte("k"), []byte("v")}, []string{"SET", "k", "v"}},
		{"long", [][]byte{[]byte("SET"), []byte("k"), []byte(long)}, []string{"SET", "k", long[:64] + "..."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactArgs(tt.args)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("RedactArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}
