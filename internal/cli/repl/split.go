package repl

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnbalancedQuotes is returned for a line with an unterminated quote.
var ErrUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// SplitArgs splits a command line into arguments the way redis-cli does.
// Double-quoted arguments understand \n \r \t \b \a \\ \" and \xHH
// escapes. Single-quoted arguments understand only \'. A closing quote
// must be followed by whitespace or the end of the line.
func SplitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return args, nil
		}

		var (
			cur    strings.Builder
			quote  byte
			closed bool
		)
		if line[i] == '"' || line[i] == '\'' {
			quote = line[i]
			i++
		}
		for !closed {
			if i == len(line) {
				if quote != 0 {
					return nil, ErrUnbalancedQuotes
				}
				break
			}
			c := line[i]
			switch {
			case quote == 0 && isSpace(c):
				closed = true
			case quote != 0 && c == quote:
				if i+1 < len(line) && !isSpace(line[i+1]) {
					return nil, ErrUnbalancedQuotes
				}
				closed = true
				i++
			case quote == '"' && c == '\\' && i+1 < len(line):
				n := unescape(line[i+1:], &cur)
				i += n
			case quote == '\'' && c == '\\' && i+1 < len(line) && line[i+1] == '\'':
				cur.WriteByte('\'')
				i += 2
			default:
				cur.WriteByte(c)
				i++
			}
		}
		args = append(args, cur.String())
	}
}

// unescape decodes the escape starting after a backslash and returns the
// number of input bytes used including the backslash.
func unescape(rest string, b *strings.Builder) int {
	if rest[0] == 'x' && len(rest) >= 3 {
		if v, err := strconv.ParseUint(rest[1:3], 16, 8); err == nil {
			b.WriteByte(byte(v))
			return 4
		}
	}
	switch rest[0] {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'a':
		b.WriteByte('\a')
	default:
		b.WriteByte(rest[0])
	}
	return 2
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
