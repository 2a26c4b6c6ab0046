package localstore

import (
	"sync"
	"time"
)

type mapEntry struct {
	v   any
	exp time.Time // zero => no TTL
}

// Map is a mutex-guarded map store with lazy expiry.
// It suits short-lived scopes (one per request or job) where an admission
// policy is overkill. MaxEntries > 0 caps new keys; overwrites always succeed.
type Map struct {
	mu         sync.RWMutex
	m          map[string]mapEntry
	maxEntries int
	now        func() time.Time
}

var _ Store = (*Map)(nil)

func NewMap(maxEntries int) *Map {
	return &Map{
		m:          make(map[string]mapEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *Map) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && s.now().After(e.exp) {
		s.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := s.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(s.m, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (s *Map) Set(key string, value any, ttl time.Duration) bool {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[key]; !exists && s.maxEntries > 0 && len(s.m) >= s.maxEntries {
		return false
	}
	s.m[key] = mapEntry{v: value, exp: exp}
	return true
}

func (s *Map) Del(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Len reports stored entries, expired ones included until they are read.
func (s *Map) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Map) Close() error {
	s.mu.Lock()
	s.m = make(map[string]mapEntry)
	s.mu.Unlock()
	return nil
}
