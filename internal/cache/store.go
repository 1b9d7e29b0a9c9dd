package cache

import (
	"golang.org/x/sync/singleflight"
	"sync"
	"sync/atomic"
)

const DefaultMaxEntries = 256

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// store is a bounded map with least-recently-used eviction. The mutex only
// guards map and list mutation; values are computed outside of it.
type store struct {
	maxEntries int

	mutex   sync.Mutex
	entries map[string]*LRUNode
	lru     *LRUList

	requests singleflight.Group

	hits      uint64
	misses    uint64
	evictions uint64
}

func newStore(maxEntries int) *store {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &store{
		maxEntries: maxEntries,
		entries:    make(map[string]*LRUNode),
		lru:        NewLRUList(),
	}
}

func (s *store) get(key string) (interface{}, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	node, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.lru.Touch(node)
	return node.value, true
}

// put stores value unless key is already present, and returns whichever
// value ends up stored.
func (s *store) put(key string, value interface{}) interface{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if node, ok := s.entries[key]; ok {
		s.lru.Touch(node)
		return node.value
	}
	for len(s.entries) >= s.maxEntries {
		evicted := s.lru.Evict()
		if evicted == nil {
			break
		}
		delete(s.entries, evicted.key)
		atomic.AddUint64(&s.evictions, 1)
	}
	s.entries[key] = s.lru.PushFront(key, value)
	return value
}

// load returns the value cached under key, computing it on a miss. Concurrent
// misses for one key share a single computation. Errors are never stored.
func (s *store) load(key string, compute func() (interface{}, error)) (interface{}, error) {
	if value, ok := s.get(key); ok {
		atomic.AddUint64(&s.hits, 1)
		return value, nil
	}
	atomic.AddUint64(&s.misses, 1)
	value, err, _ := s.requests.Do(key, func() (interface{}, error) {
		if value, ok := s.get(key); ok {
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return nil, err
		}
		return s.put(key, value), nil
	})
	return value, err
}

func (s *store) clear() {
	s.mutex.Lock()
	s.entries = make(map[string]*LRUNode)
	s.lru.Clear()
	s.mutex.Unlock()
}

func (s *store) len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.entries)
}

func (s *store) stats() Stats {
	return Stats{
		Hits:      atomic.LoadUint64(&s.hits),
		Misses:    atomic.LoadUint64(&s.misses),
		Evictions: atomic.LoadUint64(&s.evictions),
		Size:      s.len(),
	}
}
