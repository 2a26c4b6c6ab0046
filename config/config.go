// Package config builds a tiercache handle from environment variables.
//
// It is the composition root for applications that do not wire stores by
// hand: it picks the remote provider, the local store, the codec and the
// clone policy, and fails at startup when a collaborator is missing.
//
//	cfg, err := config.Load()
//	cache, err := config.Build[Page](ctx, cfg, zaplog.New(logger))
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tiercache"
	"github.com/unkn0wn-root/tiercache/codec"
	ls "github.com/unkn0wn-root/tiercache/localstore"
	lsristretto "github.com/unkn0wn-root/tiercache/localstore/ristretto"
	pr "github.com/unkn0wn-root/tiercache/provider"
	prbigcache "github.com/unkn0wn-root/tiercache/provider/bigcache"
	prredis "github.com/unkn0wn-root/tiercache/provider/redis"
)

// Config is the environment surface. Every variable is prefixed TIERCACHE_.
type Config struct {
	Namespace                   string        `env:"NAMESPACE" envDefault:"app"`
	Mode                        string        `env:"MODE" envDefault:"two-level"` // two-level | distributed
	Clone                       bool          `env:"CLONE"`
	Codec                       string        `env:"CODEC" envDefault:"msgpack"` // json | msgpack | msgpack-json | cbor
	Schema                      uint32        `env:"SCHEMA"`
	DefaultTTL                  time.Duration `env:"DEFAULT_TTL" envDefault:"10m"`
	LocalTTL                    time.Duration `env:"LOCAL_TTL"`
	InvalidateLocalOnWriteError bool          `env:"INVALIDATE_LOCAL_ON_WRITE_ERROR"`
	MaxPayloadBytes             int           `env:"MAX_PAYLOAD_BYTES"`

	Remote RemoteConfig `envPrefix:"REMOTE_"`
	Local  LocalConfig  `envPrefix:"LOCAL_"`
}

type RemoteConfig struct {
	Backend string `env:"BACKEND" envDefault:"redis"` // redis | bigcache

	RedisAddrs    []string `env:"REDIS_ADDRS" envSeparator:"," envDefault:"localhost:6379"`
	RedisUsername string   `env:"REDIS_USERNAME"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	RedisDB       int      `env:"REDIS_DB"`
	KeyPrefix     string   `env:"KEY_PREFIX"`
	RedisUnlink   bool     `env:"REDIS_UNLINK"`
	PingOnStart   bool     `env:"PING_ON_START" envDefault:"true"` // Build fails if redis is unreachable

	BigcacheLifeWindow time.Duration `env:"BIGCACHE_LIFE_WINDOW" envDefault:"10m"`
	BigcacheMaxMB      int           `env:"BIGCACHE_MAX_MB"`
}

type LocalConfig struct {
	Backend string `env:"BACKEND" envDefault:"ristretto"` // ristretto | map

	MaxItems    int64 `env:"MAX_ITEMS" envDefault:"10000"`
	BufferItems int64 `env:"BUFFER_ITEMS" envDefault:"64"`
	Sync        bool  `env:"SYNC" envDefault:"true"`
}

const prefix = "TIERCACHE_"

// Load reads Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads Config from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix, Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unsupported setting as *tiercache.ConfigError.
func (c Config) Validate() error {
	if _, err := c.mode(); err != nil {
		return err
	}
	switch c.Codec {
	case "json", "msgpack", "msgpack-json", "cbor":
	default:
		return &tiercache.ConfigError{Field: "Codec", Reason: fmt.Sprintf("unsupported codec %q", c.Codec)}
	}
	switch c.Remote.Backend {
	case "redis":
		if len(c.Remote.RedisAddrs) == 0 {
			return &tiercache.ConfigError{Field: "Remote.RedisAddrs", Reason: "at least one address is required"}
		}
	case "bigcache":
	default:
		return &tiercache.ConfigError{Field: "Remote.Backend", Reason: fmt.Sprintf("unsupported backend %q", c.Remote.Backend)}
	}
	switch c.Local.Backend {
	case "ristretto", "map":
	default:
		return &tiercache.ConfigError{Field: "Local.Backend", Reason: fmt.Sprintf("unsupported backend %q", c.Local.Backend)}
	}
	return nil
}

func (c Config) mode() (tiercache.Mode, error) {
	switch strings.ToLower(c.Mode) {
	case "two-level", "twolevel", "":
		return tiercache.ModeTwoLevel, nil
	case "distributed":
		return tiercache.ModeDistributed, nil
	default:
		return 0, &tiercache.ConfigError{Field: "Mode", Reason: fmt.Sprintf("unsupported mode %q", c.Mode)}
	}
}

// Build wires the stores named by cfg into a handle for V.
// The handle owns the stores: closing it closes them.
func Build[V any](ctx context.Context, cfg Config, logger tiercache.Logger) (tiercache.Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, _ := cfg.mode()

	remote, err := newProvider(ctx, cfg.Remote)
	if err != nil {
		return nil, err
	}

	var local ls.Store
	if mode == tiercache.ModeTwoLevel {
		local, err = newLocalStore(cfg.Local)
		if err != nil {
			_ = remote.Close(ctx)
			return nil, err
		}
	}

	h, err := tiercache.New[V](tiercache.Options[V]{
		Namespace:                   cfg.Namespace,
		Provider:                    remote,
		Local:                       local,
		Codec:                       CodecFor[V](cfg.Codec, cfg.MaxPayloadBytes),
		Mode:                        mode,
		Clone:                       cfg.Clone,
		Schema:                      cfg.Schema,
		Logger:                      logger,
		DefaultTTL:                  cfg.DefaultTTL,
		LocalTTL:                    cfg.LocalTTL,
		InvalidateLocalOnWriteError: cfg.InvalidateLocalOnWriteError,
	})
	if err != nil {
		_ = remote.Close(ctx)
		if local != nil {
			_ = local.Close()
		}
		return nil, err
	}
	return h, nil
}

// CodecFor maps a codec name to a Codec[V]; unknown names fall back to msgpack.
// maxBytes > 0 caps encoded and decoded payloads.
func CodecFor[V any](name string, maxBytes int) codec.Codec[V] {
	var cd codec.Codec[V]
	switch name {
	case "json":
		cd = codec.JSON[V]{}
	case "cbor":
		cd = codec.MustCBOR[V](codec.CBOROptions{Strict: true})
	case "msgpack-json":
		cd = codec.Msgpack[V]{JSONTags: true, CompactInts: true}
	default:
		cd = codec.Msgpack[V]{}
	}
	if maxBytes > 0 {
		cd = codec.Limit[V]{Inner: cd, MaxEncode: maxBytes, MaxDecode: maxBytes}
	}
	return cd
}

func newProvider(ctx context.Context, rc RemoteConfig) (pr.Provider, error) {
	switch rc.Backend {
	case "bigcache":
		p, err := prbigcache.New(ctx, prbigcache.Config{
			LifeWindow:         rc.BigcacheLifeWindow,
			HardMaxCacheSizeMB: rc.BigcacheMaxMB,
		})
		if err != nil {
			return nil, fmt.Errorf("bigcache provider: %w", err)
		}
		return p, nil
	default:
		client := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    rc.RedisAddrs,
			Username: rc.RedisUsername,
			Password: rc.RedisPassword,
			DB:       rc.RedisDB,
		})
		p, err := prredis.New(prredis.Config{
			Client:      client,
			KeyPrefix:   rc.KeyPrefix,
			Unlink:      rc.RedisUnlink,
			CloseClient: true,
		})
		if err != nil {
			return nil, err
		}
		if rc.PingOnStart {
			if err := p.Ping(ctx); err != nil {
				_ = p.Close(ctx)
				return nil, err
			}
		}
		return p, nil
	}
}

func newLocalStore(lc LocalConfig) (ls.Store, error) {
	switch lc.Backend {
	case "map":
		return ls.NewMap(int(lc.MaxItems)), nil
	default:
		s, err := lsristretto.New(lsristretto.Config{
			NumCounters: lc.MaxItems * 10, // ristretto recommends ~10x the item count
			MaxCost:     lc.MaxItems,
			BufferItems: lc.BufferItems,
			Sync:        lc.Sync,
		})
		if err != nil {
			return nil, fmt.Errorf("ristretto store: %w", err)
		}
		return s, nil
	}
}
