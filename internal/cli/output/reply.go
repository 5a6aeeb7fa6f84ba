package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// FormatReply writes r the way redis-cli does. Raw mode prints values
// without type annotations or quoting, one per line.
func FormatReply(w io.Writer, r resp.Reply, raw bool) error {
	var b strings.Builder
	if raw {
		writeRaw(&b, r)
	} else {
		writeHuman(&b, r, "")
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeHuman writes r without a trailing newline. Continuation lines of
// nested arrays start with indent.
func writeHuman(b *strings.Builder, r resp.Reply, indent string) {
	switch v := r.(type) {
	case resp.SimpleString:
		b.WriteString(string(v))
	case resp.Error:
		b.WriteString("(error) ")
		b.WriteString(v.Error())
	case resp.Integer:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case resp.Bulk:
		if v == nil {
			b.WriteString("(nil)")
			return
		}
		b.WriteString(strconv.Quote(string(v)))
	case resp.Array:
		if v == nil {
			b.WriteString("(nil)")
			return
		}
		if len(v) == 0 {
			b.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v)))
		inner := indent + strings.Repeat(" ", width+2)
		for i, elem := range v {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			label := strconv.Itoa(i + 1)
			b.WriteString(strings.Repeat(" ", width-len(label)))
			b.WriteString(label)
			b.WriteString(") ")
			writeHuman(b, elem, inner)
		}
	}
}

func writeRaw(b *strings.Builder, r resp.Reply) {
	switch v := r.(type) {
	case resp.SimpleString:
		b.WriteString(string(v))
	case resp.Error:
		b.WriteString(v.Error())
	case resp.Integer:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case resp.Bulk:
		b.Write(v)
	case resp.Array:
		for _, elem := range v {
			writeRaw(b, elem)
		}
		return
	}
	b.WriteByte('\n')
}
