package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CommandError
		expected string
	}{
		{
			name:     "wrong type",
			err:      ErrWrongType,
			expected: "WRONGTYPE Operation against a key holding the wrong kind of value",
		},
		{
			name:     "not an integer",
			err:      ErrNotAnInteger,
			expected: "ERR value is not an integer or out of range",
		},
		{
			name:     "wrong arity is lowercased",
			err:      WrongArity("GET"),
			expected: "ERR wrong number of arguments for 'get' command",
		},
		{
			name:     "invalid expiry",
			err:      InvalidExpiry("set"),
			expected: "ERR invalid expire time in 'set' command",
		},
		{
			name:     "unknown command",
			err:      UnknownCommand("foo", [][]byte{[]byte("a"), []byte("b")}),
			expected: "ERR unknown command 'foo', with args beginning with: 'a' 'b' ",
		},
		{
			name:     "noauth",
			err:      ErrNoAuth,
			expected: "NOAUTH Authentication required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCommandError_Is(t *testing.T) {
	a := NewCommandError(KindSyntax, "message 1")
	b := NewCommandError(KindSyntax, "message 2") // Same kind, different message
	c := NewCommandError(KindOverflow, "message 1")

	if !errors.Is(a, b) {
		t.Error("errors.Is should return true for same kind")
	}
	if errors.Is(a, c) {
		t.Error("errors.Is should return false for different kind")
	}
	if errors.Is(a, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-CommandError")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", ErrWrongType), ErrWrongType) {
		t.Error("errors.Is should see through wrapping")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"command error", ErrOverflow, KindOverflow},
		{"wrapped command error", fmt.Errorf("x: %w", ErrSyntax), KindSyntax},
		{"regular error", errors.New("boom"), KindInternal},
		{"nil error", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf() = %v, want %v", got, tt.expected)
			}
		})
	}

	if !IsKind(WrongArity("x"), KindWrongArity) {
		t.Error("IsKind should match arity error")
	}
	if IsKind(errors.New("x"), KindWrongArity) {
		t.Error("IsKind should not match plain error")
	}
}

func TestErrorKind_String(t *testing.T) {
	seen := make(map[string]ErrorKind)
	for k := KindInternal; k <= KindMaxClients; k++ {
		name := k.String()
		if name == "" || strings.ContainsAny(name, " -") {
			t.Errorf("kind %d has bad label %q", k, name)
		}
		if prev, ok := seen[name]; ok {
			t.Errorf("kinds %d and %d share label %q", prev, k, name)
		}
		seen[name] = k
	}
	if got := ErrorKind(200).String(); got != "internal" {
		t.Errorf("out of range kind = %q", got)
	}
}

func TestUnknownCommand_Truncates(t *testing.T) {
	long := strings.Repeat("x", 1000)
	args := make([][]byte, 100)
	for i := range args {
		args[i] = []byte(long)
	}
	err := UnknownCommand(long, args)
	if len(err.Message) > 4*maxEchoedArgs {
		t.Errorf("message length = %d, want bounded", len(err.Message))
	}
	if strings.ContainsAny(err.Message, "\r\n") {
		t.Error("message must be a single line")
	}
}
