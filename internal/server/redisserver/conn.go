package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/core/command"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/pkg/resp"
)

const (
	// readChunk is the initial input buffer size and its growth step.
	readChunk = 16 * 1024
	// minRead is the smallest free space offered to a Read.
	minRead = 512
	// maxIdleBuffer is the largest buffer kept across an empty read cycle.
	maxIdleBuffer = 64 * 1024
)

// conn is one client connection.
type conn struct {
	nc     net.Conn
	id     string
	closed atomic.Bool
}

func newConn(nc net.Conn) *conn {
	return &conn{nc: nc, id: ulid.Make().String()}
}

func (c *conn) close() {
	if c.closed.CompareAndSwap(false, true) {
		_ = c.nc.Close()
	}
}

// serveConn admits nc and serves it on the calling goroutine.
func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	if c, ok := s.accept(nc); ok {
		s.handle(ctx, c)
	}
}

// handle runs the read, dispatch and write loop for c until the client
// disconnects, a fatal error occurs or the server shuts down.
func (s *Server) handle(ctx context.Context, c *conn) {
	defer s.untrack(c)
	defer c.close()
	nc := c.nc

	ctx = logger.WithConnID(logger.WithLogger(ctx, s.logger), c.id)
	log := logger.L(ctx).With("remote", nc.RemoteAddr().String())
	log.Debug("client connected")

	sess := &command.Session{ID: c.id}
	hctx := s.dispatcher.NewContext(sess)
	parser := resp.NewParser(
		resp.WithMaxBulkLen(s.cfg.MaxBulkLen),
		resp.WithMaxMultiBulkLen(s.cfg.MaxMultiBulkLen),
	)

	in := make([]byte, 0, readChunk)
	var out []byte
	for {
		if err := nc.SetReadDeadline(s.readDeadline(len(in))); err != nil {
			return
		}
		if cap(in)-len(in) < minRead {
			in = slices.Grow(in, readChunk)
		}
		n, rerr := nc.Read(in[len(in):cap(in)])
		in = in[:len(in)+n]

		if n > 0 {
			var consumed int
			var perr error
			consumed, out, perr = s.process(hctx, parser, in, out, log)
			if perr != nil {
				out = resp.AppendError(out, "ERR", "Protocol error: "+protocolMessage(perr))
			}
			if len(out) > 0 {
				if err := s.write(nc, out); err != nil {
					log.Debug("connection write error", "error", err)
					return
				}
				if cap(out) > maxIdleBuffer {
					out = nil
				} else {
					out = out[:0]
				}
			}
			if perr != nil {
				s.connObs.ConnRejected(RejectProtocolError)
				s.limitWarn.Do(func() {
					log.Warn("protocol error, closing connection", "error", perr)
				})
				return
			}
			if sess.Quit {
				log.Debug("client quit")
				return
			}

			in = in[:copy(in, in[consumed:])]
			if len(in) > s.cfg.QueryBufferLimit {
				s.connObs.ConnRejected(RejectQueryBuffer)
				s.limitWarn.Do(func() {
					log.Warn("query buffer limit exceeded, closing connection",
						"pending", len(in), "limit", s.cfg.QueryBufferLimit)
				})
				return
			}
			if len(in) == 0 && cap(in) > maxIdleBuffer {
				in = make([]byte, 0, readChunk)
			}
		}

		if rerr != nil {
			var ne net.Error
			switch {
			case errors.Is(rerr, io.EOF), errors.Is(rerr, net.ErrClosed), c.closed.Load():
				log.Debug("client disconnected")
			case errors.As(rerr, &ne) && ne.Timeout():
				log.Debug("connection timed out", "pending", len(in))
			default:
				log.Debug("connection read error", "error", rerr)
			}
			return
		}
	}
}

// process dispatches every complete frame at the front of in, appending
// the replies to out. It stops after QUIT and at the first protocol error,
// returning the bytes consumed so far.
func (s *Server) process(hctx *command.Context, p *resp.Parser, in, out []byte, log logger.Logger) (int, []byte, error) {
	debug := log.Enabled(slog.LevelDebug)
	pos := 0
	for pos < len(in) && !hctx.Session.Quit {
		args, n, err := p.Parse(in[pos:])
		if err != nil {
			return pos, out, err
		}
		if n == 0 {
			break
		}
		pos += n
		if len(args) == 0 {
			continue
		}
		if debug {
			log.Debug("command", "args", logger.RedactArgs(args))
		}
		out = resp.Append(out, s.dispatcher.Dispatch(hctx, args))
	}
	return pos, out, nil
}

// readDeadline returns the idle deadline while no input is pending and the
// read deadline once a frame has started.
func (s *Server) readDeadline(pending int) time.Time {
	if pending == 0 {
		if s.cfg.IdleTimeout <= 0 {
			return time.Time{}
		}
		return time.Now().Add(s.cfg.IdleTimeout)
	}
	return time.Now().Add(s.cfg.ReadTimeout)
}

func (s *Server) write(nc net.Conn, b []byte) error {
	if err := nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	_, err := nc.Write(b)
	return err
}

// protocolMessage strips the codec sentinel prefix from a parse error.
func protocolMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{resp.ErrProtocol, resp.ErrLimitExceeded} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}
