package repl

import (
	"errors"
	"slices"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"PING", []string{"PING"}},
		{"set  key   value ", []string{"set", "key", "value"}},
		{`set k "hello world"`, []string{"set", "k", "hello world"}},
		{`set k ""`, []string{"set", "k", ""}},
		{`set k "a\nb\t\"c\"\\"`, []string{"set", "k", "a\nb\t\"c\"\\"}},
		{`set k "\x41\x7a\xZZ"`, []string{"set", "k", "AzxZZ"}},
		{`set k 'it\'s raw \n'`, []string{"set", "k", `it's raw \n`}},
		{"a\tb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if err != nil {
				t.Fatalf("SplitArgs: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitArgs_Unbalanced(t *testing.T) {
	for _, line := range []string{`set "abc`, `set 'abc`, `set "a"b`, `set 'a'b`, `set "abc\`} {
		if _, err := SplitArgs(line); !errors.Is(err, ErrUnbalancedQuotes) {
			t.Errorf("SplitArgs(%q) err = %v, want ErrUnbalancedQuotes", line, err)
		}
	}
}
