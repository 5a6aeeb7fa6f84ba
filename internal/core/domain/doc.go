// Package domain defines the core domain models for respkv.
//
// Domain models are pure values without any IO dependencies or framework
// coupling. This package contains:
//
//   - Value: the tagged variant of stored values (string, integer, list,
//     hash, set, sorted set) with byte-exact equality and conversions
//   - Errors: the command error taxonomy rendered as RESP error replies
package domain
