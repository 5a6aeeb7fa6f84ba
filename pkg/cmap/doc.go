// Package cmap provides a concurrent map implementation for respkv.
//
// This package implements a sharded concurrent map optimized for
// a high-throughput key-value store with the following features:
//
//   - Sharding: Configurable power-of-two shard count, MurmurHash3 key placement
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Atomic read-modify-write: Compute runs a callback under the shard lock
//   - Iteration: Per-shard iteration and sampling for cursors and expiry sweeps
//
// Usage:
//
//	m := cmap.NewWithShards[string, Entry](64)
//	m.Compute("key", func(cur Entry, exists bool) (Entry, cmap.Op) {
//		return entry, cmap.Store
//	})
//	m.View("key", func(val Entry, exists bool) { ... })
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (View, Range) use RLock,
// write operations (Compute, Move, EvictSample) use Lock. Callbacks run while the
// shard lock is held and must not call back into the same map.
package cmap
