package resp

import (
	"bytes"
	"errors"
	"fmt"
)

// Protocol limits to prevent DoS attacks.
const (
	// DefaultMaxMultiBulkLen limits the number of elements in a request array.
	DefaultMaxMultiBulkLen = 1024 * 1024

	// DefaultMaxBulkLen limits the size of a single bulk string (512MB, as Redis).
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// MaxInlineLen limits the length of an inline command line (64KB).
	MaxInlineLen = 64 * 1024

	// maxHeaderLen bounds "*<n>\r\n" and "$<n>\r\n" lines.
	maxHeaderLen = 32
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Parser parses RESP2 requests. It is not safe for concurrent use; each
// connection owns one.
type Parser struct {
	maxMultiBulkLen int
	maxBulkLen      int

	// args is reused between calls to avoid an allocation per frame.
	args [][]byte

	// pend records how far an incomplete multibulk frame got, so the next
	// call resumes there instead of rescanning every argument.
	pend pending
}

// pending is the resumable state of a multibulk frame. Offsets are
// relative to the frame start.
type pending struct {
	n     int64 // declared argument count, 0 when nothing is pending
	pos   int   // offset just past the last complete argument
	spans []span
}

type span struct{ start, end int }

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxMultiBulkLen sets the maximum number of arguments per request.
func WithMaxMultiBulkLen(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxMultiBulkLen = n
		}
	}
}

// WithMaxBulkLen sets the maximum size of a single argument.
func WithMaxBulkLen(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxBulkLen = n
		}
	}
}

// NewParser creates a request parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		maxMultiBulkLen: DefaultMaxMultiBulkLen,
		maxBulkLen:      DefaultMaxBulkLen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseCommand parses a single request from buf with default limits.
// Unlike Parser.Parse, the returned argument slice is freshly allocated.
func ParseCommand(buf []byte) ([][]byte, int, error) {
	p := NewParser()
	args, n, err := p.Parse(buf)
	if err != nil || n == 0 {
		return nil, n, err
	}
	if args == nil {
		return nil, n, nil
	}
	out := make([][]byte, len(args))
	copy(out, args)
	return out, n, nil
}

// Parse parses one request frame from the front of buf.
//
// It returns the frame arguments and the number of bytes consumed. When buf
// holds only part of a frame, Parse returns (nil, 0, nil) and the same bytes,
// extended with newly read data, must be offered again; parsing resumes
// after the last complete argument. A consumed frame with no arguments
// ("*0\r\n" or a blank inline line) yields (nil, n, nil).
//
// The returned arguments alias buf and the slice itself is reused by the next
// call: callers must copy anything they keep.
func (p *Parser) Parse(buf []byte) ([][]byte, int, error) {
	if p.pend.n > 0 && (len(buf) < p.pend.pos || buf[0] != '*') {
		p.Reset()
	}
	if len(buf) == 0 {
		return nil, 0, nil
	}
	if buf[0] != '*' {
		return p.parseInline(buf)
	}
	args, n, err := p.parseMultiBulk(buf)
	if err != nil || n > 0 {
		p.Reset()
	}
	return args, n, err
}

// Reset drops the state of a partially parsed frame.
func (p *Parser) Reset() {
	p.pend.n, p.pend.pos = 0, 0
	p.pend.spans = p.pend.spans[:0]
}

func (p *Parser) parseMultiBulk(buf []byte) ([][]byte, int, error) {
	n, pos := p.pend.n, p.pend.pos
	if n == 0 {
		line, next, err := readLine(buf, 0, maxHeaderLen)
		if err != nil || next == 0 {
			return nil, 0, err
		}
		count, ok := parseInt(line[1:])
		if !ok || count < 0 {
			return nil, 0, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
		}
		if count > int64(p.maxMultiBulkLen) {
			return nil, 0, fmt.Errorf("%w: multibulk length %d exceeds limit %d", ErrLimitExceeded, count, p.maxMultiBulkLen)
		}
		if count == 0 {
			return nil, next, nil
		}
		n, pos = count, next
		p.pend.spans = p.pend.spans[:0]
	}

	for int64(len(p.pend.spans)) < n {
		if pos >= len(buf) {
			return p.suspend(n, pos)
		}
		if buf[pos] != '$' {
			return nil, 0, fmt.Errorf("%w: expected '$', got '%c'", ErrProtocol, buf[pos])
		}
		line, next, err := readLine(buf, pos, maxHeaderLen)
		if err != nil {
			return nil, 0, err
		}
		if next == 0 {
			return p.suspend(n, pos)
		}
		l, ok := parseInt(line[1:])
		if !ok || l < 0 {
			return nil, 0, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if l > int64(p.maxBulkLen) {
			return nil, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, l, p.maxBulkLen)
		}
		end := next + int(l)
		if end+2 > len(buf) {
			return p.suspend(n, pos)
		}
		if buf[end] != '\r' || buf[end+1] != '\n' {
			return nil, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
		}
		p.pend.spans = append(p.pend.spans, span{next, end})
		pos = end + 2
	}

	args := p.args[:0]
	for _, sp := range p.pend.spans {
		args = append(args, buf[sp.start:sp.end:sp.end])
	}
	p.args = args
	return args, pos, nil
}

func (p *Parser) suspend(n int64, pos int) ([][]byte, int, error) {
	p.pend.n, p.pend.pos = n, pos
	return nil, 0, nil
}

// parseInline parses a telnet-style command line. A bare LF terminator is
// accepted here, as Redis does.
func (p *Parser) parseInline(buf []byte) ([][]byte, int, error) {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		if len(buf) > MaxInlineLen {
			return nil, 0, fmt.Errorf("%w: inline command length exceeds limit %d", ErrLimitExceeded, MaxInlineLen)
		}
		return nil, 0, nil
	}
	if idx > MaxInlineLen {
		return nil, 0, fmt.Errorf("%w: inline command length exceeds limit %d", ErrLimitExceeded, MaxInlineLen)
	}
	line := buf[:idx]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return nil, idx + 1, nil
	}
	if len(fields) > p.maxMultiBulkLen {
		return nil, 0, fmt.Errorf("%w: inline argument count exceeds limit %d", ErrLimitExceeded, p.maxMultiBulkLen)
	}
	args := p.args[:0]
	for _, f := range fields {
		args = append(args, f[:len(f):len(f)])
	}
	p.args = args
	return args, idx + 1, nil
}

// readLine returns the line starting at buf[start] without its CRLF and the
// offset just past the terminator. next == 0 means the line is incomplete.
func readLine(buf []byte, start, maxLen int) (line []byte, next int, err error) {
	idx := bytes.IndexByte(buf[start:], '\n')
	if idx < 0 {
		if len(buf)-start > maxLen {
			return nil, 0, fmt.Errorf("%w: line too long", ErrProtocol)
		}
		return nil, 0, nil
	}
	if idx > maxLen {
		return nil, 0, fmt.Errorf("%w: line too long", ErrProtocol)
	}
	if idx == 0 || buf[start+idx-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: missing CR before LF", ErrProtocol)
	}
	return buf[start : start+idx-1], start + idx + 1, nil
}

// parseInt parses a base-10 signed integer without allocating.
func parseInt(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	neg := false
	if b[0] == '-' {
		neg = true
		b = b[1:]
		if len(b) == 0 {
			return 0, false
		}
	}
	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (1<<63-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	if neg {
		return -int64(n), true
	}
	if n > 1<<63-1 {
		return 0, false
	}
	return int64(n), true
}
