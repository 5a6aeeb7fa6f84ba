package command

import (
	"math"
	"strconv"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

// isOpt reports whether arg equals the option name, ignoring ASCII case.
// opt must be uppercase.
func isOpt(arg []byte, opt string) bool {
	if len(arg) != len(opt) {
		return false
	}
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != opt[i] {
			return false
		}
	}
	return true
}

func parseInt(arg []byte) (int64, error) {
	n, ok := domain.ParseInt(arg)
	if !ok {
		return 0, domain.ErrNotAnInteger
	}
	return n, nil
}

func parseFloat(arg []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(arg), 64)
	if err != nil || math.IsNaN(f) {
		return 0, domain.ErrNotAFloat
	}
	return f, nil
}

// keys converts key arguments to owned strings.
func keys(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

// clone copies an argument so it can outlive the read buffer. The result
// is never nil, so an empty argument stays an empty string.
func clone(arg []byte) []byte {
	return append(make([]byte, 0, len(arg)), arg...)
}

// stringReply copies a string-typed value into a bulk reply.
func stringReply(v domain.Value) (resp.Reply, error) {
	b, ok := domain.AppendBytes(make([]byte, 0, 16), v)
	if !ok {
		return nil, domain.ErrWrongType
	}
	return resp.Bulk(b), nil
}

// parseExpiry parses a TTL or timestamp argument. Unparsable input and a
// negative relative TTL report InvalidExpiry for cmd.
func parseExpiry(arg []byte, absolute bool, cmd string) (int64, error) {
	n, ok := domain.ParseInt(arg)
	if !ok || (n < 0 && !absolute) {
		return 0, domain.InvalidExpiry(cmd)
	}
	return n, nil
}

// absoluteExpiry converts a relative or absolute expiry argument to unix
// milliseconds. unit is the number of milliseconds per argument unit.
func absoluteExpiry(now, n, unit int64, absolute bool, cmd string) (int64, error) {
	if n > math.MaxInt64/unit || n < math.MinInt64/unit {
		return 0, domain.InvalidExpiry(cmd)
	}
	ms := n * unit
	if absolute {
		return ms, nil
	}
	if (ms > 0 && now > math.MaxInt64-ms) || (ms < 0 && now < math.MinInt64-ms) {
		return 0, domain.InvalidExpiry(cmd)
	}
	return now + ms, nil
}

// normalizeRange converts Redis start/stop indexes, which may be negative,
// to a half-open range over a sequence of length n. ok is false when the
// range is empty.
func normalizeRange(start, stop int64, n int) (int, int, bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	if stop >= size {
		stop = size - 1
	}
	return int(start), int(stop) + 1, true
}

// bulks converts byte slices to an array of bulk replies.
func bulks(items [][]byte) resp.Array {
	out := make(resp.Array, len(items))
	for i, b := range items {
		out[i] = resp.Bulk(b)
	}
	return out
}

// formatScore renders a sorted-set score the way Redis does: integral
// values without exponent or fraction, others in shortest form.
func formatScore(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e17:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
