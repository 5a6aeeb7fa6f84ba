package resp

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// maxReplyDepth bounds nested arrays accepted by ParseReply.
	maxReplyDepth = 64

	// maxArrayPrealloc caps the capacity reserved from an array header.
	maxArrayPrealloc = 1024
)

// ParseReply decodes one reply from the front of buf.
//
// It returns the reply and the number of bytes consumed, or (nil, 0, nil)
// when buf holds only part of a reply. Decoded bulk strings are copies and
// do not alias buf.
func ParseReply(buf []byte) (Reply, int, error) {
	return parseReply(buf, 0, 0)
}

func parseReply(buf []byte, pos, depth int) (Reply, int, error) {
	if pos >= len(buf) {
		return nil, 0, nil
	}
	if depth > maxReplyDepth {
		return nil, 0, fmt.Errorf("%w: reply nesting too deep", ErrProtocol)
	}

	switch buf[pos] {
	case '+', '-', ':':
		line, next, err := readLine(buf, pos, MaxInlineLen)
		if err != nil || next == 0 {
			return nil, 0, err
		}
		body := line[1:]
		switch line[0] {
		case '+':
			return SimpleString(body), next, nil
		case '-':
			kind, msg, _ := strings.Cut(string(body), " ")
			return Error{Kind: kind, Message: msg}, next, nil
		default:
			n, ok := parseInt(body)
			if !ok {
				return nil, 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, body)
			}
			return Integer(n), next, nil
		}

	case '$':
		line, next, err := readLine(buf, pos, maxHeaderLen)
		if err != nil || next == 0 {
			return nil, 0, err
		}
		l, ok := parseInt(line[1:])
		if !ok || l < -1 {
			return nil, 0, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if l == -1 {
			return NullBulk, next, nil
		}
		if l > DefaultMaxBulkLen {
			return nil, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, l, DefaultMaxBulkLen)
		}
		end := next + int(l)
		if end+2 > len(buf) {
			return nil, 0, nil
		}
		if buf[end] != '\r' || buf[end+1] != '\n' {
			return nil, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
		}
		b := bytes.Clone(buf[next:end])
		if b == nil {
			b = []byte{}
		}
		return Bulk(b), end + 2, nil

	case '*':
		line, next, err := readLine(buf, pos, maxHeaderLen)
		if err != nil || next == 0 {
			return nil, 0, err
		}
		n, ok := parseInt(line[1:])
		if !ok || n < -1 {
			return nil, 0, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
		}
		if n == -1 {
			return NullArray, next, nil
		}
		if n > DefaultMaxMultiBulkLen {
			return nil, 0, fmt.Errorf("%w: multibulk length %d exceeds limit %d", ErrLimitExceeded, n, DefaultMaxMultiBulkLen)
		}
		// n is untrusted until the elements arrive.
		arr := make(Array, 0, min(n, maxArrayPrealloc))
		for i := int64(0); i < n; i++ {
			elem, end, err := parseReply(buf, next, depth+1)
			if err != nil || end == 0 {
				return nil, 0, err
			}
			arr = append(arr, elem)
			next = end
		}
		return arr, next, nil

	default:
		return nil, 0, fmt.Errorf("%w: unknown reply type '%c'", ErrProtocol, buf[pos])
	}
}
