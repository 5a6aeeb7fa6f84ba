package redisserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/core/command"
	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/pkg/resp"
)

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds reading the rest of a started frame.
	// Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one batch of replies.
	WriteTimeout time.Duration
	// IdleTimeout closes connections with no pending input (0 disables).
	IdleTimeout time.Duration
	// MaxClients caps concurrent connections (0 means unlimited).
	MaxClients int
	// QueryBufferLimit caps buffered but unparsed input per connection.
	QueryBufferLimit int
	// MaxBulkLen caps a single request argument.
	MaxBulkLen int
	// MaxMultiBulkLen caps the number of arguments in a request.
	MaxMultiBulkLen int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:             "127.0.0.1:6380",
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      5 * time.Minute,
		MaxClients:       10000,
		QueryBufferLimit: 1024 * 1024 * 1024,
		MaxBulkLen:       resp.DefaultMaxBulkLen,
		MaxMultiBulkLen:  resp.DefaultMaxMultiBulkLen,
	}
}

// withDefaults fills zero durations and limits from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.QueryBufferLimit <= 0 {
		c.QueryBufferLimit = d.QueryBufferLimit
	}
	if c.MaxBulkLen <= 0 {
		c.MaxBulkLen = d.MaxBulkLen
	}
	if c.MaxMultiBulkLen <= 0 {
		c.MaxMultiBulkLen = d.MaxMultiBulkLen
	}
	return c
}

// ConnObserver receives connection lifecycle events. Implementations must
// not block.
type ConnObserver interface {
	ConnOpened()
	ConnClosed()
	ConnRejected(reason string)
}

type nopConnObserver struct{}

func (nopConnObserver) ConnOpened()         {}
func (nopConnObserver) ConnClosed()         {}
func (nopConnObserver) ConnRejected(string) {}

// Reasons passed to ConnObserver.ConnRejected.
const (
	RejectMaxClients    = "max_clients"
	RejectQueryBuffer   = "query_buffer_limit"
	RejectProtocolError = "protocol_error"
)

// Option configures the Server.
type Option func(*Server)

// WithConnObserver sets the connection lifecycle observer.
func WithConnObserver(o ConnObserver) Option {
	return func(s *Server) {
		if o != nil {
			s.connObs = o
		}
	}
}

// WithDispatcherOptions passes options to the command dispatcher.
func WithDispatcherOptions(opts ...command.Option) Option {
	return func(s *Server) {
		s.dispatchOpts = append(s.dispatchOpts, opts...)
	}
}

// Server is the RESP server.
type Server struct {
	cfg          Config
	dispatcher   *command.Dispatcher
	dispatchOpts []command.Option
	logger       logger.Logger
	connObs      ConnObserver

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*conn]struct{}
	closing atomic.Bool
	wg      sync.WaitGroup

	active atomic.Int64
	total  atomic.Uint64

	acceptWarn rate.Sometimes
	limitWarn  rate.Sometimes
}

// New creates a server executing commands against store.
func New(cfg *Config, store *memory.Store, log logger.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		cfg:        cfg.withDefaults(),
		logger:     log.With("component", "redisserver"),
		connObs:    nopConnObserver{},
		conns:      make(map[*conn]struct{}),
		acceptWarn: rate.Sometimes{First: 1, Interval: 10 * time.Second},
		limitWarn:  rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	dopts := append([]command.Option{command.WithServerStats(s)}, s.dispatchOpts...)
	s.dispatcher = command.NewDispatcher(store, dopts...)
	return s
}

// Dispatcher returns the command dispatcher used by every connection.
func (s *Server) Dispatcher() *command.Dispatcher {
	return s.dispatcher
}

// ConnectedClients returns the number of open connections.
func (s *Server) ConnectedClients() int {
	return int(s.active.Load())
}

// TotalConnections returns the number of connections accepted so far.
func (s *Server) TotalConnections() uint64 {
	return s.total.Load()
}

// Processed returns the number of commands dispatched so far.
func (s *Server) Processed() uint64 {
	return s.dispatcher.Processed()
}

// Addr returns the listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start listens on Config.Addr and serves connections in the background.
// The listener closes when ctx is cancelled or on Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("starting redis server", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Serve(ctx, ln); err != nil {
			s.logger.Error("redis server error", "error", err)
		}
	}()
	return nil
}

// Serve accepts connections on ln until it is closed. It returns nil after
// Shutdown or cancellation of ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.acceptWarn.Do(func() {
					s.logger.Warn("accept error, retrying", "error", err, "delay", backoff)
				})
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		c, ok := s.accept(nc)
		if !ok {
			continue
		}
		go func() {
			defer s.wg.Done()
			s.handle(ctx, c)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// accept registers nc as a live connection and adds it to the wait group
// under the same lock Shutdown takes, so Shutdown never waits on a group
// that a later connection could still join. Past MaxClients the client
// gets an error reply and the connection is closed.
func (s *Server) accept(nc net.Conn) (*conn, bool) {
	if limit := s.cfg.MaxClients; limit > 0 && s.active.Load() >= int64(limit) {
		s.connObs.ConnRejected(RejectMaxClients)
		s.limitWarn.Do(func() {
			s.logger.Warn("max number of clients reached", "remote", nc.RemoteAddr().String(), "max_clients", limit)
		})
		_ = nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		_, _ = nc.Write(resp.Marshal(command.ErrorReply(domain.ErrMaxClients)))
		_ = nc.Close()
		return nil, false
	}

	c := newConn(nc)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		_ = nc.Close()
		return nil, false
	}
	s.wg.Add(1)
	s.conns[c] = struct{}{}
	s.active.Add(1)
	s.total.Add(1)
	s.connObs.ConnOpened()
	return c, true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[c]; !ok {
		return
	}
	delete(s.conns, c)
	s.active.Add(-1)
	s.connObs.ConnClosed()
}

// Shutdown stops accepting, closes every live connection and waits for the
// connection goroutines to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	var err error
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	for c := range s.conns {
		c.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("redis server stopped", "commands_processed", s.dispatcher.Processed())
	return err
}
