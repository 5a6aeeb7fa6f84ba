package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request when the caller's
// context has no deadline.
const DefaultTimeout = 5 * time.Second

const readChunk = 16 * 1024

// Client is a single RESP connection. It is not safe for concurrent use.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	wbuf    []byte
	rbuf    []byte
}

// Dial connects to a RESP server at addr.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{conn: conn, timeout: timeout}
}

// Do sends one command and waits for its reply. An error reply from the
// server is returned as the reply, not as an error; err reports transport
// and protocol failures only.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Reply, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Now()) })
	defer stop()

	c.wbuf = c.wbuf[:0]
	c.wbuf = resp.AppendCommand(c.wbuf, toBytes(args)...)
	if _, err := c.conn.Write(c.wbuf); err != nil {
		return nil, fmt.Errorf("write: %w", c.ctxErr(ctx, err))
	}
	return c.readReply(ctx)
}

func (c *Client) readReply(ctx context.Context) (resp.Reply, error) {
	for {
		reply, n, err := resp.ParseReply(c.rbuf)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			c.rbuf = c.rbuf[:copy(c.rbuf, c.rbuf[n:])]
			return reply, nil
		}
		c.rbuf = slices.Grow(c.rbuf, readChunk)
		m, err := c.conn.Read(c.rbuf[len(c.rbuf):cap(c.rbuf)])
		c.rbuf = c.rbuf[:len(c.rbuf)+m]
		if err != nil {
			return nil, fmt.Errorf("read: %w", c.ctxErr(ctx, err))
		}
	}
}

// ctxErr prefers the context error when a cancellation forced the
// deadline.
func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func toBytes(args []string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}
