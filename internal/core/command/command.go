package command

import (
	"errors"
	"slices"

	"github.com/samber/lo"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/resp"
)

// Flags describe properties of a command.
type Flags uint8

const (
	// FlagWrite marks commands that may modify the keyspace.
	FlagWrite Flags = 1 << iota
	// FlagReadOnly marks commands that only read the keyspace.
	FlagReadOnly
	// FlagNoAuth marks commands allowed before authentication.
	FlagNoAuth
	// FlagFast marks O(1) or O(log N) commands.
	FlagFast
)

// Names returns the flag names as reported by COMMAND.
func (f Flags) Names() []string {
	var names []string
	if f&FlagWrite != 0 {
		names = append(names, "write")
	}
	if f&FlagReadOnly != 0 {
		names = append(names, "readonly")
	}
	if f&FlagNoAuth != 0 {
		names = append(names, "no-auth")
	}
	if f&FlagFast != 0 {
		names = append(names, "fast")
	}
	return names
}

// Handler executes a command. args excludes the command name and aliases
// the connection's read buffer; anything stored must be copied.
type Handler func(ctx *Context, args [][]byte) (resp.Reply, error)

// Descriptor describes one command.
type Descriptor struct {
	Name string
	// MinArgs and MaxArgs bound the argument count, command name excluded.
	// MaxArgs < 0 means unbounded.
	MinArgs int
	MaxArgs int
	Flags   Flags
	// FirstKey, LastKey and KeyStep locate key arguments (1-based,
	// command name at 0). LastKey -1 means the last argument.
	FirstKey int
	LastKey  int
	KeyStep  int
	Handler  Handler
}

// AcceptsArity reports whether n arguments are within bounds.
func (d *Descriptor) AcceptsArity(n int) bool {
	return n >= d.MinArgs && (d.MaxArgs < 0 || n <= d.MaxArgs)
}

// Arity returns the arity in the form COMMAND reports it: positive for a
// fixed count, negative for a minimum, both including the name.
func (d *Descriptor) Arity() int {
	if d.MinArgs == d.MaxArgs {
		return d.MinArgs + 1
	}
	return -(d.MinArgs + 1)
}

// table is the command table. It is built once in init and never modified.
var table map[string]*Descriptor

func init() {
	table = buildTable(
		connectionCommands,
		stringCommands,
		keyCommands,
		serverCommands,
		listCommands,
		hashCommands,
		setCommands,
		zsetCommands,
	)
}

func buildTable(groups ...[]Descriptor) map[string]*Descriptor {
	t := make(map[string]*Descriptor)
	for _, group := range groups {
		for i := range group {
			d := &group[i]
			if _, dup := t[d.Name]; dup {
				panic("command: duplicate table entry " + d.Name)
			}
			t[d.Name] = d
		}
	}
	return t
}

// Lookup finds a command by name, ignoring ASCII case.
func Lookup(name []byte) (*Descriptor, bool) {
	var buf [32]byte
	d, ok := table[string(appendLower(buf[:0], name))]
	return d, ok
}

// Count returns the number of commands in the table.
func Count() int {
	return len(table)
}

// Names returns the sorted command names.
func Names() []string {
	names := lo.Keys(table)
	slices.Sort(names)
	return names
}

func appendLower(dst, name []byte) []byte {
	for _, c := range name {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		dst = append(dst, c)
	}
	return dst
}

// Resolve maps a frame to its descriptor, failing with an UnknownCommand
// or WrongArity error.
func Resolve(frame [][]byte) (*Descriptor, error) {
	if len(frame) == 0 {
		return nil, domain.UnknownCommand("", nil)
	}
	d, ok := Lookup(frame[0])
	if !ok {
		return nil, domain.UnknownCommand(string(frame[0]), frame[1:])
	}
	if !d.AcceptsArity(len(frame) - 1) {
		return nil, domain.WrongArity(d.Name)
	}
	return d, nil
}

// ErrorReply renders err as a RESP error reply.
func ErrorReply(err error) resp.Error {
	var ce *domain.CommandError
	if errors.As(err, &ce) {
		return resp.NewError(ce.Kind.Prefix(), ce.Message)
	}
	return resp.NewError("ERR", err.Error())
}
