package tiercache

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/internal/wire"
	pr "github.com/unkn0wn-root/tiercache/provider"
)

// Distributed is the L2 handle: every write encodes, every read decodes.
// Values returned by Get are fresh copies by construction.
type Distributed[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
	schema   uint32
	ttl      time.Duration
	log      Logger
	hooks    Hooks
}

var _ Cache[struct{}] = (*Distributed[struct{}])(nil)

// NewDistributed builds an L2-only handle. Namespace, Provider and Codec are required.
func NewDistributed[V any](opts Options[V]) (*Distributed[V], error) {
	if opts.Namespace == "" {
		return nil, &ConfigError{Field: "Namespace", Reason: "namespace is required"}
	}
	if opts.Provider == nil {
		return nil, &ConfigError{Field: "Provider", Reason: "a remote provider is required"}
	}
	if opts.Codec == nil {
		return nil, &ConfigError{Field: "Codec", Reason: "a codec is required"}
	}
	return &Distributed[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		schema:   opts.Schema,
		ttl:      coalesce[time.Duration](opts.DefaultTTL, defaultTTL),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

func (d *Distributed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok, err := d.get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if !ok {
		d.hooks.Miss(storageKey(d.ns, key))
		return v, false, nil
	}
	d.hooks.RemoteHit(storageKey(d.ns, key))
	return v, true, nil
}

func (d *Distributed[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	frame, err := d.encode(key, value)
	if err != nil {
		return err
	}
	return d.write(ctx, key, frame, d.remoteTTL(ttl))
}

func (d *Distributed[V]) Remove(ctx context.Context, key string) error {
	if err := d.del(ctx, key); err != nil {
		return &RemoveError{Key: key, RemoteErr: err}
	}
	return nil
}

func (d *Distributed[V]) Close(ctx context.Context) error {
	return d.provider.Close(ctx)
}

func (d *Distributed[V]) get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	k := storageKey(d.ns, key)
	raw, ok, err := d.provider.Get(ctx, k)
	if err != nil {
		return zero, false, fmt.Errorf("tiercache: get %q: %w", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	payload, err := wire.Decode(raw, d.schema)
	if err != nil {
		if errors.Is(err, wire.ErrSchema) {
			d.hooks.DecodeFailed(k, "schema_mismatch")
			return zero, false, &DeserializationError{Key: key, Err: fmt.Errorf("%w: %w", ErrSchemaMismatch, err)}
		}
		d.hooks.DecodeFailed(k, "corrupt")
		return zero, false, &DeserializationError{Key: key, Err: err}
	}
	v, err := d.codec.Decode(payload)
	if err != nil {
		d.hooks.DecodeFailed(k, "value_decode")
		return zero, false, &DeserializationError{Key: key, Err: err}
	}
	return v, true, nil
}

// encode produces the framed bytes for value; nothing is written.
func (d *Distributed[V]) encode(key string, value V) ([]byte, error) {
	payload, err := d.codec.Encode(value)
	if err != nil {
		return nil, &SerializationError{Key: key, Err: err}
	}
	return wire.Encode(d.schema, payload), nil
}

// write stores an encoded frame with an already resolved ttl.
func (d *Distributed[V]) write(ctx context.Context, key string, frame []byte, ttl time.Duration) error {
	k := storageKey(d.ns, key)
	ok, err := d.provider.Set(ctx, k, frame, ttl)
	if err != nil {
		return &WriteError{Key: key, Tier: TierRemote, Err: err}
	}
	if !ok {
		d.hooks.RemoteSetRejected(k)
		d.log.Debug("remote Set rejected by provider (pressure)", keyFields(d.ns, key, nil))
		return &WriteError{Key: key, Tier: TierRemote, Err: ErrRemoteRejected}
	}
	return nil
}

func (d *Distributed[V]) del(ctx context.Context, key string) error {
	return d.provider.Del(ctx, storageKey(d.ns, key))
}

func (d *Distributed[V]) remoteTTL(ttl time.Duration) time.Duration {
	return ttlFor(ttl, d.ttl)
}
