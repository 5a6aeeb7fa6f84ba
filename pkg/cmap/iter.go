package cmap

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration.
// Note: This acquires locks shard by shard, so the view may not be consistent.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.shards {
		if !m.RangeShard(i, fn) {
			return
		}
	}
}

// RangeShard iterates over the pairs of a single shard under its read lock.
// It returns false if fn stopped the iteration.
func (m *Map[K, V]) RangeShard(index int, fn func(key K, value V) bool) bool {
	shard := m.shards[index]
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	for k, v := range shard.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// EvictSample visits up to limit entries of one shard under its write lock
// and deletes those for which evict returns true. Go map iteration order is
// randomized, so repeated calls sample different entries.
// Returns the number of entries deleted.
func (m *Map[K, V]) EvictSample(index, limit int, evict func(key K, value V) bool) int {
	shard := m.shards[index]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	removed, seen := 0, 0
	for k, v := range shard.items {
		if seen >= limit {
			break
		}
		seen++
		if evict(k, v) {
			delete(shard.items, k)
			removed++
		}
	}
	return removed
}

// ShardCount returns the number of shards.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}
