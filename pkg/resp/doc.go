// Package resp implements the RESP2 wire codec used by respkv.
//
// The package is stateless and performs no I/O:
//
//   - request.go: incremental request parser (arrays of bulk strings and inline commands)
//   - reply.go: the reply lattice and an append-style encoder
//   - decode.go: incremental reply decoder (used by clients and tests)
//
// Parsing is re-entrant over whatever bytes are currently buffered. A call
// either yields one complete frame together with the number of bytes it
// consumed, reports that more input is needed (n == 0, err == nil), or fails
// with ErrProtocol / ErrLimitExceeded. The caller owns the read loop and the
// buffer.
//
// Usage:
//
//	p := resp.NewParser()
//	for {
//		args, n, err := p.Parse(buf)
//		if err != nil || n == 0 {
//			break
//		}
//		buf = buf[n:]
//		out = resp.Append(out, handle(args))
//	}
package resp
