package querycontext

import (
	"github.com/patrickmn/go-cache"
	"sync"
	"time"
)

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1024
)

// Sessions tracks the contexts of runs a long-lived host keeps after they
// finished, so that they can be looked up and released by id. A context is
// dropped after its TTL, or earlier when the limit is reached and it is the
// oldest one kept.
type Sessions struct {
	mu       sync.Mutex
	contexts *cache.Cache
	max      int
}

func NewSessions() *Sessions {
	return NewBoundedSessions(DefaultSessionTTL, DefaultMaxSessions)
}

// NewBoundedSessions keeps at most max contexts for ttl each. Non-positive
// values select the defaults.
func NewBoundedSessions(ttl time.Duration, max int) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{contexts: cache.New(ttl, ttl/2), max: max}
}

func (s *Sessions) Add(c *Context) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contexts.ItemCount() >= s.max {
		s.contexts.DeleteExpired()
	}
	for s.contexts.ItemCount() >= s.max && s.evictOldest() {
	}
	s.contexts.SetDefault(c.id, c)
}

func (s *Sessions) evictOldest() bool {
	var oldest string
	var expires int64
	for id, item := range s.contexts.Items() {
		if oldest == "" || item.Expiration < expires {
			oldest, expires = id, item.Expiration
		}
	}
	if oldest == "" {
		s.contexts.DeleteExpired()
		return false
	}
	s.contexts.Delete(oldest)
	return true
}

func (s *Sessions) Get(id string) (*Context, error) {
	c, ok := s.contexts.Get(id)
	if !ok {
		return nil, UnknownSessionError(id)
	}
	return c.(*Context), nil
}

// Cleanup releases the context with the given id.
func (s *Sessions) Cleanup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts.Get(id); !ok {
		return UnknownSessionError(id)
	}
	s.contexts.Delete(id)
	return nil
}

func (s *Sessions) Len() int {
	return s.contexts.ItemCount()
}
