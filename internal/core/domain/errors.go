package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies a command failure. The kind selects the RESP error
// prefix and is used as a metric label.
type ErrorKind uint8

const (
	KindInternal ErrorKind = iota
	KindUnknownCommand
	KindWrongArity
	KindWrongType
	KindNotAnInteger
	KindNotAFloat
	KindInvalidExpiry
	KindSyntax
	KindOverflow
	KindNoSuchKey
	KindNoAuth
	KindWrongPass
	KindMaxClients
)

var kindNames = [...]string{
	KindInternal:       "internal",
	KindUnknownCommand: "unknown_command",
	KindWrongArity:     "wrong_arity",
	KindWrongType:      "wrong_type",
	KindNotAnInteger:   "not_an_integer",
	KindNotAFloat:      "not_a_float",
	KindInvalidExpiry:  "invalid_expiry",
	KindSyntax:         "syntax",
	KindOverflow:       "overflow",
	KindNoSuchKey:      "no_such_key",
	KindNoAuth:         "noauth",
	KindWrongPass:      "wrongpass",
	KindMaxClients:     "max_clients",
}

// String returns a stable snake_case name.
func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "internal"
}

// Prefix returns the leading word of the RESP error line.
func (k ErrorKind) Prefix() string {
	switch k {
	case KindWrongType:
		return "WRONGTYPE"
	case KindNoAuth:
		return "NOAUTH"
	case KindWrongPass:
		return "WRONGPASS"
	default:
		return "ERR"
	}
}

// CommandError is a failure reported to the client as a RESP error reply.
// The connection stays open after a CommandError.
type CommandError struct {
	Kind    ErrorKind
	Message string
}

// Error returns the RESP error line without the leading '-'.
func (e *CommandError) Error() string {
	return e.Kind.Prefix() + " " + e.Message
}

// Is implements errors.Is() support. Two command errors match when their
// kinds match.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewCommandError creates a CommandError of the given kind.
func NewCommandError(kind ErrorKind, message string) *CommandError {
	return &CommandError{Kind: kind, Message: message}
}

// Sentinel errors with fixed messages.
var (
	ErrWrongType    = NewCommandError(KindWrongType, "Operation against a key holding the wrong kind of value")
	ErrNotAnInteger = NewCommandError(KindNotAnInteger, "value is not an integer or out of range")
	ErrNotAFloat    = NewCommandError(KindNotAFloat, "value is not a valid float")
	ErrSyntax       = NewCommandError(KindSyntax, "syntax error")
	ErrOverflow     = NewCommandError(KindOverflow, "increment or decrement would overflow")
	ErrNoSuchKey    = NewCommandError(KindNoSuchKey, "no such key")
	ErrNoAuth       = NewCommandError(KindNoAuth, "Authentication required.")
	ErrWrongPass    = NewCommandError(KindWrongPass, "invalid username-password pair or user is disabled.")
	ErrMaxClients   = NewCommandError(KindMaxClients, "max number of clients reached")
	ErrNoPassword   = NewCommandError(KindSyntax, "AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")
	ErrDBIndex      = NewCommandError(KindSyntax, "DB index is out of range")
)

// maxEchoedArgs bounds how much of an unknown command is echoed back.
const maxEchoedArgs = 128

// UnknownCommand reports a command name that is not in the table.
func UnknownCommand(name string, args [][]byte) *CommandError {
	var b strings.Builder
	b.WriteString("unknown command '")
	writeTruncated(&b, name)
	b.WriteString("', with args beginning with: ")
	for _, a := range args {
		if b.Len() > maxEchoedArgs {
			break
		}
		b.WriteByte('\'')
		writeTruncated(&b, string(a))
		b.WriteString("' ")
	}
	return NewCommandError(KindUnknownCommand, b.String())
}

func writeTruncated(b *strings.Builder, s string) {
	if len(s) > maxEchoedArgs {
		s = s[:maxEchoedArgs]
	}
	b.WriteString(s)
}

// WrongArity reports an argument count outside the command's range.
func WrongArity(name string) *CommandError {
	return NewCommandError(KindWrongArity, "wrong number of arguments for '"+strings.ToLower(name)+"' command")
}

// InvalidExpiry reports a non-representable expiry for the named command.
func InvalidExpiry(name string) *CommandError {
	return NewCommandError(KindInvalidExpiry, "invalid expire time in '"+strings.ToLower(name)+"' command")
}

// KindOf returns the kind of a CommandError in err's chain, or
// KindInternal for any other error.
func KindOf(err error) ErrorKind {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a CommandError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Kind == kind
}
