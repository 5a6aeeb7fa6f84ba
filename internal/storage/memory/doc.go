// Package memory provides the in-memory keyspace for respkv.
//
// Keys map to an entry holding a domain.Value and an optional absolute
// expiry. Entries live in a sharded concurrent map, so commands touching
// keys in different shards never contend for the same lock.
//
// Expiry:
//
// An entry whose expiry is in the past is logically absent. Every read or
// write that touches such a key removes it first (lazy eviction), and an
// optional sweeper samples shards periodically to reclaim keys nobody
// touches again (active expiry).
//
// Thread Safety:
//
// All operations are thread-safe. Read operations use the shard RLock,
// read-modify-write operations run entirely under the shard Lock, so a
// concurrent writer can never observe them half applied.
package memory
