package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// Options describe how to reach a server.
type Options struct {
	Addr     string
	Password string
	Timeout  time.Duration
}

// Manager owns one Client, dialing on first use and again after a
// transport failure. It is not safe for concurrent use.
type Manager struct {
	opts   Options
	client *Client
}

// NewManager creates a connection manager.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	return m.opts.Addr
}

// Connected reports whether a connection is currently open.
func (m *Manager) Connected() bool {
	return m.client != nil
}

// Do sends a command on the managed connection. A transport failure
// drops the connection so the next call redials.
func (m *Manager) Do(ctx context.Context, args ...string) (resp.Reply, error) {
	c, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := c.Do(ctx, args...)
	if err != nil {
		m.Disconnect()
		return nil, err
	}
	return reply, nil
}

func (m *Manager) connect(ctx context.Context) (*Client, error) {
	if m.client != nil {
		return m.client, nil
	}
	c, err := Dial(ctx, m.opts.Addr, m.opts.Timeout)
	if err != nil {
		return nil, err
	}
	if m.opts.Password != "" {
		reply, err := c.Do(ctx, "AUTH", m.opts.Password)
		if err != nil {
			c.Close()
			return nil, err
		}
		if e, ok := reply.(resp.Error); ok {
			c.Close()
			return nil, fmt.Errorf("auth: %w", e)
		}
	}
	m.client = c
	return c, nil
}

// Disconnect closes the current connection, if any.
func (m *Manager) Disconnect() {
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
}
