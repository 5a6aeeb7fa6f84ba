package domain

import (
	"bytes"
	"maps"
	"slices"
	"strconv"
)

// Type is the user-visible type of a stored value, as reported by TYPE.
type Type uint8

const (
	TypeNone Type = iota
	TypeString
	TypeList
	TypeHash
	TypeSet
	TypeZSet
)

// String returns the name TYPE replies with.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeHash:
		return "hash"
	case TypeSet:
		return "set"
	case TypeZSet:
		return "zset"
	default:
		return "none"
	}
}

// Value is a stored value. The set of implementations is closed; handlers
// dispatch on it with a type switch.
type Value interface {
	// Type returns the user-visible type.
	Type() Type
	// Clone returns a deep copy that shares no memory with the receiver.
	Clone() Value

	sealed()
}

// String is an arbitrary byte sequence.
type String []byte

// Int is a string value held in its canonical 64-bit integer form.
// It is the result of INCR/DECR and reads back as its decimal text.
type Int int64

// List is an ordered sequence of elements.
type List [][]byte

// Hash maps fields to values.
type Hash map[string][]byte

// Set is an unordered collection of unique members.
type Set map[string]struct{}

// ZSet maps members to scores.
type ZSet map[string]float64

func (String) Type() Type { return TypeString }
func (Int) Type() Type    { return TypeString }
func (List) Type() Type   { return TypeList }
func (Hash) Type() Type   { return TypeHash }
func (Set) Type() Type    { return TypeSet }
func (ZSet) Type() Type   { return TypeZSet }

func (String) sealed() {}
func (Int) sealed()    {}
func (List) sealed()   {}
func (Hash) sealed()   {}
func (Set) sealed()    {}
func (ZSet) sealed()   {}

func (s String) Clone() Value {
	if s == nil {
		return String{}
	}
	return String(bytes.Clone(s))
}

func (n Int) Clone() Value { return n }

func (l List) Clone() Value {
	out := make(List, len(l))
	for i, e := range l {
		out[i] = bytes.Clone(e)
	}
	return out
}

func (h Hash) Clone() Value {
	out := make(Hash, len(h))
	for k, v := range h {
		out[k] = bytes.Clone(v)
	}
	return out
}

func (s Set) Clone() Value  { return maps.Clone(s) }
func (z ZSet) Clone() Value { return maps.Clone(z) }

// Bytes returns the textual form of a string-typed value.
// It reports false for collection values.
func Bytes(v Value) ([]byte, bool) {
	switch t := v.(type) {
	case String:
		return t, true
	case Int:
		return strconv.AppendInt(nil, int64(t), 10), true
	default:
		return nil, false
	}
}

// AppendBytes appends the textual form of a string-typed value to dst.
func AppendBytes(dst []byte, v Value) ([]byte, bool) {
	switch t := v.(type) {
	case String:
		return append(dst, t...), true
	case Int:
		return strconv.AppendInt(dst, int64(t), 10), true
	default:
		return dst, false
	}
}

// StrLen returns the length of a string-typed value's textual form.
func StrLen(v Value) (int, bool) {
	switch t := v.(type) {
	case String:
		return len(t), true
	case Int:
		var buf [20]byte
		return len(strconv.AppendInt(buf[:0], int64(t), 10)), true
	default:
		return 0, false
	}
}

// Integer interprets a value as a 64-bit integer.
// It fails with ErrWrongType for collections and ErrNotAnInteger for
// strings that are not a canonical base-10 integer.
func Integer(v Value) (int64, error) {
	switch t := v.(type) {
	case Int:
		return int64(t), nil
	case String:
		n, ok := ParseInt(t)
		if !ok {
			return 0, ErrNotAnInteger
		}
		return n, nil
	default:
		return 0, ErrWrongType
	}
}

// ParseInt parses b as a canonical base-10 signed 64-bit integer. Leading
// '+', leading zeros, "-0" and surrounding whitespace are rejected, so the
// integer formats back to exactly the same bytes.
func ParseInt(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	var buf [20]byte
	if !bytes.Equal(strconv.AppendInt(buf[:0], n, 10), b) {
		return 0, false
	}
	return n, true
}

// Equal reports whether two values are equal. String-typed values compare
// by their textual bytes, so Int(5) equals String("5").
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := Bytes(a); ok {
		bb, ok := Bytes(b)
		return ok && bytes.Equal(ab, bb)
	}
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		return ok && slices.EqualFunc(x, y, bytes.Equal)
	case Hash:
		y, ok := b.(Hash)
		return ok && maps.EqualFunc(x, y, bytes.Equal)
	case Set:
		y, ok := b.(Set)
		return ok && maps.Equal(x, y)
	case ZSet:
		y, ok := b.(ZSet)
		return ok && maps.Equal(x, y)
	}
	return false
}

// IsEmpty reports whether a collection has no elements. Redis never keeps
// empty collections; callers delete the key instead.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case List:
		return len(t) == 0
	case Hash:
		return len(t) == 0
	case Set:
		return len(t) == 0
	case ZSet:
		return len(t) == 0
	default:
		return false
	}
}
