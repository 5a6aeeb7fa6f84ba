package domain

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{String("x"), "string"},
		{Int(7), "string"},
		{List{}, "list"},
		{Hash{}, "hash"},
		{Set{}, "set"},
		{ZSet{}, "zset"},
	}
	for _, tt := range tests {
		if got := tt.v.Type().String(); got != tt.want {
			t.Errorf("%T.Type() = %q, want %q", tt.v, got, tt.want)
		}
	}
	if TypeNone.String() != "none" {
		t.Errorf("TypeNone = %q", TypeNone.String())
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"10", 10, true},
		{"-10", -10, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"-9223372036854775808", math.MinInt64, true},
		{"9223372036854775808", 0, false},
		{"", 0, false},
		{"+1", 0, false},
		{"01", 0, false},
		{"-0", 0, false},
		{" 1", 0, false},
		{"1 ", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseInt([]byte(tt.in))
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseInt(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseInt_RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64, 1 << 40} {
		s := strconv.FormatInt(n, 10)
		got, ok := ParseInt([]byte(s))
		if !ok || got != n {
			t.Errorf("ParseInt(%q) = (%d, %v)", s, got, ok)
		}
	}
}

func TestInteger(t *testing.T) {
	if n, err := Integer(Int(5)); err != nil || n != 5 {
		t.Errorf("Integer(Int) = (%d, %v)", n, err)
	}
	if n, err := Integer(String("-12")); err != nil || n != -12 {
		t.Errorf("Integer(String) = (%d, %v)", n, err)
	}
	if _, err := Integer(String("x")); !errors.Is(err, ErrNotAnInteger) {
		t.Errorf("Integer(non-numeric) err = %v", err)
	}
	if _, err := Integer(List{}); !errors.Is(err, ErrWrongType) {
		t.Errorf("Integer(List) err = %v", err)
	}
}

func TestBytes(t *testing.T) {
	b, ok := Bytes(Int(-300))
	if !ok || string(b) != "-300" {
		t.Errorf("Bytes(Int) = (%q, %v)", b, ok)
	}
	if n, _ := StrLen(Int(-300)); n != 4 {
		t.Errorf("StrLen(Int) = %d", n)
	}
	if _, ok := Bytes(Set{}); ok {
		t.Error("Bytes(Set) should fail")
	}
	dst, ok := AppendBytes([]byte("v="), String("abc"))
	if !ok || string(dst) != "v=abc" {
		t.Errorf("AppendBytes = %q", dst)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	s := String("abc")
	c := s.Clone().(String)
	c[0] = 'z'
	if string(s) != "abc" {
		t.Error("String clone shares memory")
	}

	l := List{[]byte("a")}
	lc := l.Clone().(List)
	lc[0][0] = 'z'
	if string(l[0]) != "a" {
		t.Error("List clone shares elements")
	}

	h := Hash{"f": []byte("v")}
	hc := h.Clone().(Hash)
	hc["f"][0] = 'z'
	hc["g"] = nil
	if string(h["f"]) != "v" || len(h) != 1 {
		t.Error("Hash clone shares memory")
	}

	if got := String(nil).Clone().(String); got == nil {
		t.Error("clone of nil String should be empty, not nil")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int and string", Int(5), String("5"), true},
		{"binary strings", String("a\x00b"), String("a\x00b"), true},
		{"different strings", String("a"), String("b"), false},
		{"string and list", String(""), List{}, false},
		{"lists", List{[]byte("a")}, List{[]byte("a")}, true},
		{"hashes", Hash{"a": []byte("1")}, Hash{"a": []byte("2")}, false},
		{"sets", Set{"a": {}}, Set{"a": {}}, true},
		{"zsets", ZSet{"a": 1}, ZSet{"a": 1}, true},
		{"nil", nil, nil, true},
		{"nil and value", nil, String(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(List{}) || !IsEmpty(Hash{}) || !IsEmpty(Set{}) || !IsEmpty(ZSet{}) {
		t.Error("empty collections should report empty")
	}
	if IsEmpty(String("")) {
		t.Error("empty string is a value, not an empty collection")
	}
}
