// Package command implements the command table and dispatcher.
//
// The table is a static, immutable map from lowercase command name to a
// Descriptor holding the arity bounds, flags and handler. Dispatch resolves
// a parsed request frame in three steps: unknown name, arity check, then
// the handler runs against the shared store. Handler failures are
// domain.CommandError values rendered as RESP error replies; the
// connection stays open.
//
// Adding a command means adding a table entry; dispatch does not change.
package command
