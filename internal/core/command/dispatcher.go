package command

import (
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// Observer receives one notification per dispatched command. errKind is
// empty on success. Implementations must not block.
type Observer interface {
	Observe(name, errKind string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) Observe(string, string, time.Duration) {}

// Authenticator verifies AUTH passwords.
type Authenticator interface {
	Verify(password []byte) bool
}

// ServerStats exposes connection counters to INFO.
type ServerStats interface {
	ConnectedClients() int
	TotalConnections() uint64
}

// Env is the shared state handlers execute against.
type Env struct {
	Store   *memory.Store
	Auth    Authenticator
	Stats   ServerStats
	Started time.Time

	commands atomic.Uint64
}

// Session is the per-connection state visible to handlers.
type Session struct {
	ID            string
	Authenticated bool
	// Quit is set by QUIT; the connection closes after the reply is written.
	Quit bool
}

// Context is passed to every handler.
type Context struct {
	*Env
	Session *Session
}

// Dispatcher resolves frames against the command table and runs them.
type Dispatcher struct {
	env      *Env
	observer Observer
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the command observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithAuthenticator requires AUTH before any command without FlagNoAuth.
func WithAuthenticator(a Authenticator) Option {
	return func(d *Dispatcher) {
		d.env.Auth = a
	}
}

// WithServerStats sets the source of the INFO clients section.
func WithServerStats(s ServerStats) Option {
	return func(d *Dispatcher) {
		d.env.Stats = s
	}
}

// NewDispatcher creates a dispatcher over store.
func NewDispatcher(store *memory.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		env:      &Env{Store: store, Started: time.Now()},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewContext creates the handler context for one connection.
func (d *Dispatcher) NewContext(sess *Session) *Context {
	if sess == nil {
		sess = &Session{}
	}
	return &Context{Env: d.env, Session: sess}
}

// AuthRequired reports whether connections must authenticate.
func (d *Dispatcher) AuthRequired() bool {
	return d.env.Auth != nil
}

// Processed returns the number of frames dispatched so far.
func (d *Dispatcher) Processed() uint64 {
	return d.env.commands.Load()
}

// Dispatch executes one frame and returns its reply. Command failures are
// returned as error replies; nothing here closes the connection.
func (d *Dispatcher) Dispatch(ctx *Context, frame [][]byte) resp.Reply {
	start := time.Now()
	d.env.commands.Add(1)

	name := "unknown"
	reply, err := d.execute(ctx, frame, &name)
	errKind := ""
	if err != nil {
		reply = ErrorReply(err)
		errKind = domain.KindOf(err).String()
	}
	d.observer.Observe(name, errKind, time.Since(start))
	return reply
}

func (d *Dispatcher) execute(ctx *Context, frame [][]byte, name *string) (resp.Reply, error) {
	desc, err := Resolve(frame)
	if err != nil {
		return nil, err
	}
	*name = desc.Name
	if d.env.Auth != nil && !ctx.Session.Authenticated && desc.Flags&FlagNoAuth == 0 {
		return nil, domain.ErrNoAuth
	}
	return desc.Handler(ctx, frame[1:])
}
