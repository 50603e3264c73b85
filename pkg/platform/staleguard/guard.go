// Package staleguard detects results that were superseded while in flight.
//
// A caller starts an operation with Begin and keeps the returned Checker.
// Any later Begin (or Invalidate) on the same guard makes that Checker
// report stale, so the caller can drop its result instead of publishing it.
package staleguard

import (
	"sync"
	"sync/atomic"
)

// Checker reports whether the operation that obtained it has been superseded.
type Checker func() bool

// Guard tracks a single generation counter.
type Guard struct {
	gen atomic.Uint64
}

// Begin starts a new generation and returns a checker bound to it.
func (g *Guard) Begin() Checker {
	mine := g.gen.Add(1)
	return func() bool {
		return g.gen.Load() != mine
	}
}

// Invalidate marks every outstanding checker stale.
func (g *Guard) Invalidate() {
	g.gen.Add(1)
}

const shardCount = 32

// Keyed holds one generation per key, and only while a fill for that key is
// in flight. Keys are spread across shards so unrelated keys do not contend
// on a single lock.
type Keyed struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	gen      uint64
	inflight int
}

func NewKeyed() *Keyed {
	k := &Keyed{}
	for i := range k.shards {
		k.shards[i].entries = make(map[string]*entry)
	}
	return k
}

// Begin starts a new generation for key. The caller must call done once it
// no longer needs the checker; the key is forgotten when its last
// operation is done.
func (k *Keyed) Begin(key string) (stale Checker, done func()) {
	s := k.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.gen++
	e.inflight++
	mine := e.gen
	s.mu.Unlock()

	var once sync.Once
	stale = func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.entries[key] != e || e.gen != mine
	}
	done = func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.inflight--
			if e.inflight == 0 && s.entries[key] == e {
				delete(s.entries, key)
			}
		})
	}
	return stale, done
}

// Invalidate marks every outstanding checker for key stale. A key with
// nothing in flight has nothing to supersede and is not recorded.
func (k *Keyed) Invalidate(key string) {
	s := k.shardFor(key)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.gen++
	}
	s.mu.Unlock()
}

// tracked reports how many keys currently hold a generation.
func (k *Keyed) tracked() int {
	n := 0
	for i := range k.shards {
		s := &k.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

func (k *Keyed) shardFor(key string) *shard {
	return &k.shards[djb2(key)%shardCount]
}

// djb2 (seed 5381, multiplier 33).
func djb2(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}
