package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	ls "github.com/unkn0wn-root/tiercache/localstore"
)

// Store keeps live values in a Ristretto cache.
// Ristretto buffers writes; with Sync=true every Set waits for the buffer to
// drain so a Get issued right after Set observes the value (unless the
// admission policy rejected it).
type Store struct {
	c    *rc.Cache
	cost CostFunc
	sync bool
}

var _ ls.Store = (*Store)(nil)

// CostFunc weighs a value against MaxCost. Default is 1 per entry.
type CostFunc func(key string, value any) int64

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	Sync        bool
	Cost        CostFunc
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(string, any) int64 { return 1 }
	}
	return &Store{c: c, cost: cost, sync: cfg.Sync}, nil
}

func (s *Store) Get(key string) (any, bool) {
	return s.c.Get(key)
}

func (s *Store) Set(key string, value any, ttl time.Duration) bool {
	if ttl < 0 {
		ttl = 0
	}
	ok := s.c.SetWithTTL(key, value, s.cost(key, value), ttl)
	if ok && s.sync {
		s.c.Wait()
	}
	return ok
}

func (s *Store) Del(key string) {
	s.c.Del(key)
}

func (s *Store) Close() error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes Ristretto counters (nil unless Config.Metrics).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
