// Package redis is the shared remote tier over go-redis.
// Any UniversalClient works: single node, sentinel or cluster.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/tiercache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	unlink      bool
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client    goredis.UniversalClient
	KeyPrefix string // prepended to every key, e.g. "cms:prod:"
	// Unlink removes keys with UNLINK, which frees large values off the
	// server's main thread. Requires Redis >= 4.
	Unlink      bool
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{
		rdb:         cfg.Client,
		prefix:      cfg.KeyPrefix,
		unlink:      cfg.Unlink,
		closeClient: cfg.CloseClient,
	}, nil
}

func (p *Redis) key(k string) string { return p.prefix + k }

// Ping checks the server is reachable. Startup code calls it so a missing
// remote tier fails fast instead of on the first request.
func (p *Redis) Ping(ctx context.Context) error {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis provider: ping: %w", err)
	}
	return nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, p.key(key)).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

// Set maps ttl <= 0 to a key without expiry.
func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	if err := p.rdb.Set(ctx, p.key(key), value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	if p.unlink {
		return p.rdb.Unlink(ctx, p.key(key)).Err()
	}
	return p.rdb.Del(ctx, p.key(key)).Err()
}

// Close releases the client only when this provider owns it.
// Repeated calls are no-ops.
func (p *Redis) Close(context.Context) error {
	if !p.closeClient {
		return nil
	}
	if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
