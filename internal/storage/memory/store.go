package memory

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Markers returned by PTTL.
const (
	// TTLMissing means the key does not exist.
	TTLMissing int64 = -2
	// TTLPersistent means the key exists without an expiry.
	TTLPersistent int64 = -1
)

// entry is the stored pair of a value and its expiry.
type entry struct {
	value    domain.Value
	expireAt int64 // unix milliseconds, 0 means no expiry
}

// liveAt reports whether the entry is visible at now. An expiry equal to
// now is not yet in the past.
func (e entry) liveAt(now int64) bool {
	return e.expireAt == 0 || now <= e.expireAt
}

// Store is the shared keyspace. It is safe for concurrent use; one Store is
// created per server and injected into every connection.
type Store struct {
	data    *cmap.Map[string, entry]
	clock   func() time.Time
	expired atomic.Uint64

	shardCount int
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces the wall clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.clock = now
	}
}

// WithShardCount sets the number of shards. It must be a power of two;
// other values fall back to cmap.DefaultShardCount.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.shardCount = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		clock:      time.Now,
		shardCount: cmap.DefaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = cmap.NewWithShards[string, entry](s.shardCount)
	return s
}

// Now returns the store clock in unix milliseconds.
func (s *Store) Now() int64 {
	return s.clock().UnixMilli()
}

// view runs fn under the shard read lock if key is live. An expired entry
// is evicted after the read lock is released.
func (s *Store) view(key string, fn func(e entry)) bool {
	now := s.Now()
	var found, stale bool
	s.data.View(key, func(e entry, ok bool) {
		switch {
		case !ok:
		case !e.liveAt(now):
			stale = true
		default:
			found = true
			if fn != nil {
				fn(e)
			}
		}
	})
	if stale {
		s.evict(key, now)
	}
	return found
}

// evict removes key if it is still expired at now.
func (s *Store) evict(key string, now int64) {
	s.data.Compute(key, func(e entry, ok bool) (entry, cmap.Op) {
		if ok && !e.liveAt(now) {
			s.expired.Add(1)
			return e, cmap.Remove
		}
		return e, cmap.Keep
	})
}

// compute is the single write path. fn sees the live entry (an expired
// entry is presented as absent and removed unless fn stores over it).
func (s *Store) compute(key string, now int64, fn func(e entry, live bool) (entry, cmap.Op)) {
	s.data.Compute(key, func(e entry, ok bool) (entry, cmap.Op) {
		stale := ok && !e.liveAt(now)
		if stale {
			s.expired.Add(1)
			e, ok = entry{}, false
		}
		next, op := fn(e, ok)
		if stale && op == cmap.Keep {
			return next, cmap.Remove
		}
		return next, op
	})
}

// View calls fn with the live value at key while holding the shard read
// lock and reports whether the key exists. fn must copy anything it keeps.
func (s *Store) View(key string, fn func(v domain.Value)) bool {
	return s.view(key, func(e entry) { fn(e.value) })
}

// Get returns a copy of the live value at key.
func (s *Store) Get(key string) (domain.Value, bool) {
	var v domain.Value
	ok := s.view(key, func(e entry) { v = e.value.Clone() })
	return v, ok
}

// Condition restricts when Set applies.
type Condition uint8

const (
	// Always sets unconditionally.
	Always Condition = iota
	// IfAbsent sets only when the key does not exist (NX).
	IfAbsent
	// IfPresent sets only when the key exists (XX).
	IfPresent
)

// SetOptions control Set.
type SetOptions struct {
	// ExpireAt is the absolute expiry in unix milliseconds; 0 clears it.
	ExpireAt int64
	// KeepTTL retains the existing expiry and ignores ExpireAt.
	KeepTTL bool
	// Condition selects NX or XX behaviour.
	Condition Condition
	// ReturnOld asks for the previous string value. A non-string previous
	// value fails the whole call with domain.ErrWrongType.
	ReturnOld bool
}

// SetResult reports the outcome of Set.
type SetResult struct {
	// Applied is false when the condition prevented the write.
	Applied bool
	// Old is a copy of the previous string value when ReturnOld was set.
	Old []byte
	// HadOld reports whether a previous value existed.
	HadOld bool
}

// Set replaces the entry at key. The store takes ownership of value; the
// caller must not modify it afterwards.
func (s *Store) Set(key string, value domain.Value, opts SetOptions) (SetResult, error) {
	var (
		res SetResult
		err error
	)
	s.compute(key, s.Now(), func(e entry, live bool) (entry, cmap.Op) {
		res.HadOld = live
		if live && opts.ReturnOld {
			old, ok := domain.AppendBytes(nil, e.value)
			if !ok {
				err = domain.ErrWrongType
				return e, cmap.Keep
			}
			res.Old = old
		}
		if (opts.Condition == IfAbsent && live) || (opts.Condition == IfPresent && !live) {
			return e, cmap.Keep
		}
		res.Applied = true
		next := entry{value: value, expireAt: opts.ExpireAt}
		if opts.KeepTTL && live {
			next.expireAt = e.expireAt
		}
		return next, cmap.Store
	})
	return res, err
}

// Update atomically applies fn to the live value at key; cur is nil when
// the key is absent. The value fn returns replaces the entry and keeps its
// expiry; nil or an empty collection deletes the key. When fn returns an
// error the entry is left untouched and the error is returned, so fn must
// validate before mutating cur in place.
func (s *Store) Update(key string, fn func(cur domain.Value) (domain.Value, error)) error {
	var err error
	s.compute(key, s.Now(), func(e entry, live bool) (entry, cmap.Op) {
		var cur domain.Value
		if live {
			cur = e.value
		}
		var next domain.Value
		next, err = fn(cur)
		switch {
		case err != nil:
			return e, cmap.Keep
		case next == nil || domain.IsEmpty(next):
			if live {
				return e, cmap.Remove
			}
			return e, cmap.Keep
		}
		if !live {
			e.expireAt = 0
		}
		e.value = next
		return e, cmap.Store
	})
	return err
}

// MutateNumeric adds delta to the integer at key, treating a missing key
// as 0, and returns the new value. The read, add and store happen under
// one shard lock.
func (s *Store) MutateNumeric(key string, delta int64) (int64, error) {
	var result int64
	err := s.Update(key, func(cur domain.Value) (domain.Value, error) {
		var n int64
		if cur != nil {
			v, err := domain.Integer(cur)
			if err != nil {
				return nil, err
			}
			n = v
		}
		if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
			return nil, domain.ErrOverflow
		}
		result = n + delta
		return domain.Int(result), nil
	})
	return result, err
}

// Delete removes the live keys and returns how many were removed.
// Expired keys are evicted but not counted.
func (s *Store) Delete(keys ...string) int {
	removed := 0
	now := s.Now()
	for _, key := range keys {
		s.compute(key, now, func(e entry, live bool) (entry, cmap.Op) {
			if !live {
				return e, cmap.Keep
			}
			removed++
			return e, cmap.Remove
		})
	}
	return removed
}

// Take removes key and returns its value, which the caller then owns.
// accept may reject the value (for example on a type mismatch), in which
// case the key is kept and accept's error is returned.
func (s *Store) Take(key string, accept func(v domain.Value) error) (domain.Value, bool, error) {
	var (
		taken domain.Value
		found bool
		err   error
	)
	s.compute(key, s.Now(), func(e entry, live bool) (entry, cmap.Op) {
		if !live {
			return e, cmap.Keep
		}
		found = true
		if accept != nil {
			if err = accept(e.value); err != nil {
				return e, cmap.Keep
			}
		}
		taken = e.value
		return e, cmap.Remove
	})
	return taken, found, err
}

// SetExpiry sets the absolute expiry of a live key in unix milliseconds
// and reports whether the key existed. An instant that is not in the
// future deletes the key.
func (s *Store) SetExpiry(key string, at int64) bool {
	existed := false
	now := s.Now()
	s.compute(key, now, func(e entry, live bool) (entry, cmap.Op) {
		if !live {
			return e, cmap.Keep
		}
		existed = true
		if at <= now {
			return e, cmap.Remove
		}
		e.expireAt = at
		return e, cmap.Store
	})
	return existed
}

// Persist removes the expiry of key and reports whether one was removed.
func (s *Store) Persist(key string) bool {
	cleared := false
	s.compute(key, s.Now(), func(e entry, live bool) (entry, cmap.Op) {
		if !live || e.expireAt == 0 {
			return e, cmap.Keep
		}
		cleared = true
		e.expireAt = 0
		return e, cmap.Store
	})
	return cleared
}

// PTTL returns the remaining time to live of key in milliseconds, or
// TTLPersistent or TTLMissing.
func (s *Store) PTTL(key string) int64 {
	now := s.Now()
	ttl := TTLMissing
	s.view(key, func(e entry) {
		if e.expireAt == 0 {
			ttl = TTLPersistent
			return
		}
		ttl = e.expireAt - now
	})
	return ttl
}

// ExpireAt returns the absolute expiry of key in unix milliseconds, or
// TTLPersistent or TTLMissing.
func (s *Store) ExpireAt(key string) int64 {
	at := TTLMissing
	s.view(key, func(e entry) {
		if e.expireAt == 0 {
			at = TTLPersistent
			return
		}
		at = e.expireAt
	})
	return at
}

// Exists returns how many of keys are live. A key named twice counts twice.
func (s *Store) Exists(keys ...string) int {
	n := 0
	for _, key := range keys {
		if s.view(key, nil) {
			n++
		}
	}
	return n
}

// Type returns the type of the value at key, or domain.TypeNone.
func (s *Store) Type(key string) domain.Type {
	t := domain.TypeNone
	s.view(key, func(e entry) { t = e.value.Type() })
	return t
}

// Rename moves the value and expiry at src to dst, replacing dst.
// It fails with domain.ErrNoSuchKey when src does not exist.
func (s *Store) Rename(src, dst string) error {
	now := s.Now()
	if src == dst {
		if !s.view(src, nil) {
			return domain.ErrNoSuchKey
		}
		return nil
	}
	moved := s.data.Move(src, dst, func(e entry) (entry, bool) {
		return e, e.liveAt(now)
	})
	if !moved {
		s.evict(src, now)
		return domain.ErrNoSuchKey
	}
	return nil
}

// Flush removes every key and returns how many were removed.
func (s *Store) Flush() int {
	return s.data.Clear()
}

// Len returns the number of stored keys, including expired keys that have
// not been evicted yet.
func (s *Store) Len() int {
	return s.data.Count()
}

// Expired returns the total number of keys removed because they expired.
func (s *Store) Expired() uint64 {
	return s.expired.Load()
}

// Stats summarizes the keyspace.
type Stats struct {
	Keys     int
	Volatile int
	Expired  uint64
}

// Stats walks every shard and counts live and volatile keys.
func (s *Store) Stats() Stats {
	now := s.Now()
	var st Stats
	s.data.Range(func(_ string, e entry) bool {
		if !e.liveAt(now) {
			return true
		}
		st.Keys++
		if e.expireAt != 0 {
			st.Volatile++
		}
		return true
	})
	st.Expired = s.Expired()
	return st
}

// Keys returns the live keys matching pattern, in no particular order.
func (s *Store) Keys(pattern string) []string {
	now := s.Now()
	var keys []string
	s.data.Range(func(key string, e entry) bool {
		if e.liveAt(now) && Match(pattern, key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

// DefaultScanCount is the COUNT hint used when none is given.
const DefaultScanCount = 10

// Scan returns live keys matching pattern starting at cursor, together with
// the cursor to continue from; a zero cursor means the iteration is done.
// The cursor addresses shards, so every key present for the whole
// iteration is returned at least once. count is a hint.
func (s *Store) Scan(cursor uint64, pattern string, count int) (uint64, []string) {
	if count <= 0 {
		count = DefaultScanCount
	}
	shards := s.data.ShardCount()
	if cursor >= uint64(shards) {
		return 0, nil
	}
	now := s.Now()
	var keys []string
	i := int(cursor)
	for ; i < shards && len(keys) < count; i++ {
		s.data.RangeShard(i, func(key string, e entry) bool {
			if e.liveAt(now) && Match(pattern, key) {
				keys = append(keys, key)
			}
			return true
		})
	}
	if i >= shards {
		return 0, keys
	}
	return uint64(i), keys
}

// maxSweepRounds bounds how often one shard is resampled in a single sweep.
const maxSweepRounds = 16

// Sweep samples up to sample entries of every shard and removes the expired
// ones. A shard where more than a quarter of the sample had expired is
// sampled again. Returns the number of keys removed.
func (s *Store) Sweep(sample int) int {
	if sample <= 0 {
		return 0
	}
	now := s.Now()
	expired := func(_ string, e entry) bool { return !e.liveAt(now) }
	total := 0
	for i := 0; i < s.data.ShardCount(); i++ {
		for round := 0; round < maxSweepRounds; round++ {
			n := s.data.EvictSample(i, sample, expired)
			total += n
			if n*4 <= sample {
				break
			}
		}
	}
	s.expired.Add(uint64(total))
	return total
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, sample int) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(sample)
		}
	}
}
