// Package redisserver serves the RESP2 protocol over TCP.
//
// Each accepted connection runs in its own goroutine:
//
//	read -> parse every complete frame -> dispatch -> single write
//
// A read may carry several pipelined frames; their replies are written in
// request order with one write. The unparsed tail of the input buffer is
// kept for the next read and bounded by Config.QueryBufferLimit. Protocol
// violations and buffer overruns close the offending connection only.
package redisserver
