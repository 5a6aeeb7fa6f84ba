package resp

import (
	"strconv"
	"strings"
)

// Reply is a RESP2 reply value. The set of implementations is closed:
// SimpleString, Error, Integer, Bulk and Array.
type Reply interface {
	appendTo(dst []byte) []byte
}

// SimpleString is a "+<text>\r\n" status reply.
type SimpleString string

// Error is a "-<kind> <message>\r\n" error reply.
type Error struct {
	Kind    string
	Message string
}

// Integer is a ":<n>\r\n" reply.
type Integer int64

// Bulk is a binary-safe "$<len>\r\n<bytes>\r\n" reply. A nil Bulk encodes
// as the null bulk string "$-1\r\n"; an empty non-nil Bulk as "$0\r\n\r\n".
type Bulk []byte

// Array is a "*<len>\r\n<elements...>" reply. A nil Array encodes as the
// null array "*-1\r\n".
type Array []Reply

// Frequently used replies.
var (
	OK        = SimpleString("OK")
	Pong      = SimpleString("PONG")
	NullBulk  = Bulk(nil)
	NullArray = Array(nil)
)

// BulkString returns a Bulk holding s.
func BulkString(s string) Bulk {
	return Bulk(s)
}

// NewError creates an error reply.
func NewError(kind, message string) Error {
	return Error{Kind: kind, Message: message}
}

// Error implements the error interface so handlers can return replies as errors.
func (e Error) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Kind + " " + e.Message
}

func (s SimpleString) appendTo(dst []byte) []byte { return AppendSimpleString(dst, string(s)) }
func (e Error) appendTo(dst []byte) []byte        { return AppendError(dst, e.Kind, e.Message) }
func (n Integer) appendTo(dst []byte) []byte      { return AppendInteger(dst, int64(n)) }
func (b Bulk) appendTo(dst []byte) []byte         { return AppendBulk(dst, b) }

func (a Array) appendTo(dst []byte) []byte {
	if a == nil {
		return AppendNullArray(dst)
	}
	dst = AppendArrayHeader(dst, len(a))
	for _, r := range a {
		dst = Append(dst, r)
	}
	return dst
}

// Append encodes r onto dst and returns the extended buffer.
// A nil Reply is encoded as a null bulk string.
func Append(dst []byte, r Reply) []byte {
	if r == nil {
		return AppendNullBulk(dst)
	}
	return r.appendTo(dst)
}

// Marshal encodes r into a new buffer.
func Marshal(r Reply) []byte {
	return Append(nil, r)
}

// AppendSimpleString appends "+s\r\n". CR and LF in s are replaced by spaces.
func AppendSimpleString(dst []byte, s string) []byte {
	dst = append(dst, '+')
	dst = appendLine(dst, s)
	return append(dst, '\r', '\n')
}

// AppendError appends "-kind message\r\n". CR and LF are replaced by spaces.
func AppendError(dst []byte, kind, message string) []byte {
	dst = append(dst, '-')
	dst = appendLine(dst, kind)
	if message != "" {
		dst = append(dst, ' ')
		dst = appendLine(dst, message)
	}
	return append(dst, '\r', '\n')
}

// AppendInteger appends ":n\r\n".
func AppendInteger(dst []byte, n int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\r', '\n')
}

// AppendBulk appends b as a bulk string, or the null bulk string if b is nil.
func AppendBulk(dst []byte, b []byte) []byte {
	if b == nil {
		return AppendNullBulk(dst)
	}
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

// AppendBulkString appends s as a bulk string.
func AppendBulkString(dst []byte, s string) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

// AppendNullBulk appends "$-1\r\n".
func AppendNullBulk(dst []byte) []byte {
	return append(dst, "$-1\r\n"...)
}

// AppendArrayHeader appends "*n\r\n". The caller appends the n elements.
func AppendArrayHeader(dst []byte, n int) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, '\r', '\n')
}

// AppendNullArray appends "*-1\r\n".
func AppendNullArray(dst []byte) []byte {
	return append(dst, "*-1\r\n"...)
}

// AppendCommand encodes args as a request frame (array of bulk strings).
func AppendCommand(dst []byte, args ...[]byte) []byte {
	dst = AppendArrayHeader(dst, len(args))
	for _, a := range args {
		if a == nil {
			a = []byte{}
		}
		dst = AppendBulk(dst, a)
	}
	return dst
}

func appendLine(dst []byte, s string) []byte {
	if !strings.ContainsAny(s, "\r\n") {
		return append(dst, s...)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			c = ' '
		}
		dst = append(dst, c)
	}
	return dst
}
