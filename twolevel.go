package tiercache

import (
	"context"
	"errors"
	"time"

	ls "github.com/unkn0wn-root/tiercache/localstore"
)

// TwoLevel fronts a Distributed handle (L2) with a Local one (L1).
//
// Get: L1 hit returns without an L2 round-trip; on L1 miss an L2 hit is
// backfilled into L1 before returning.
// Set: encode, then L1, then L2. See WriteError for the failure outcome.
// Remove: L1, then L2; partial failures are reported, not rolled back.
//
// No lock spans both tiers. Concurrent Set and Get on one key may observe
// L1 and L2 out of step for the duration of a write.
type TwoLevel[V any] struct {
	l1 *Local[V]
	l2 *Distributed[V]

	log   Logger
	hooks Hooks

	invalidateOnWriteErr bool
	ownsRemote           bool
}

var _ Cache[struct{}] = (*TwoLevel[struct{}])(nil)

// NewTwoLevel requires Namespace, Provider, Codec and Local.
func NewTwoLevel[V any](opts Options[V]) (*TwoLevel[V], error) {
	if opts.Local == nil {
		return nil, &ConfigError{Field: "Local", Reason: "a local store is required for the two-level cache"}
	}
	l2, err := NewDistributed[V](opts)
	if err != nil {
		return nil, err
	}
	l1, err := NewLocal[V](opts)
	if err != nil {
		return nil, err
	}
	return &TwoLevel[V]{
		l1:                   l1,
		l2:                   l2,
		log:                  l2.log,
		hooks:                l2.hooks,
		invalidateOnWriteErr: opts.InvalidateLocalOnWriteError,
		ownsRemote:           true,
	}, nil
}

// Scope returns a TwoLevel that shares this handle's L2 but keeps its own L1
// in local. Closing the scoped handle closes local only.
// Use one scope per request or job when L1 must not outlive it.
func (t *TwoLevel[V]) Scope(local ls.Store) (*TwoLevel[V], error) {
	if local == nil {
		return nil, &ConfigError{Field: "Local", Reason: "a local store is required for a scoped cache"}
	}
	l1 := *t.l1
	l1.store = local
	return &TwoLevel[V]{
		l1:                   &l1,
		l2:                   t.l2,
		log:                  t.log,
		hooks:                t.hooks,
		invalidateOnWriteErr: t.invalidateOnWriteErr,
	}, nil
}

func (t *TwoLevel[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok, err := t.l1.get(key)
	if err != nil {
		return v, false, err
	}
	if ok {
		t.hooks.LocalHit(storageKey(t.l1.ns, key))
		return v, true, nil
	}

	v, ok, err = t.l2.get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if !ok {
		t.hooks.Miss(storageKey(t.l2.ns, key))
		return v, false, nil
	}
	// remaining L2 lifetime is unknown here; see Options.LocalTTL
	t.l1.set(key, v, t.l1.ttl)
	t.hooks.RemoteHit(storageKey(t.l2.ns, key))
	return v, true, nil
}

// Set returns *SerializationError before touching either tier. If the L2
// write fails, or the provider rejects it (ErrRemoteRejected), it returns
// *WriteError{Tier: TierRemote}; L1 then holds the new value unless
// Options.InvalidateLocalOnWriteError dropped it (WriteError.LocalInvalidated
// reports which).
func (t *TwoLevel[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	frame, err := t.l2.encode(key, value)
	if err != nil {
		return err
	}
	remoteTTL := t.l2.remoteTTL(ttl)
	t.l1.set(key, value, t.l1.localTTL(remoteTTL))

	err = t.l2.write(ctx, key, frame, remoteTTL)
	if err == nil {
		return nil
	}
	invalidated := false
	if t.invalidateOnWriteErr {
		_ = t.l1.Remove(ctx, key)
		invalidated = true
	}
	var we *WriteError
	if errors.As(err, &we) {
		we.LocalInvalidated = invalidated
	}
	k := storageKey(t.l2.ns, key)
	t.hooks.RemoteWriteFailed(k, err, invalidated)
	t.log.Warn("remote write failed after local write", keyFields(t.l2.ns, key, Fields{"err": err, "localInvalidated": invalidated}))
	return err
}

func (t *TwoLevel[V]) Remove(ctx context.Context, key string) error {
	lerr := t.l1.Remove(ctx, key)
	rerr := t.l2.del(ctx, key)
	if lerr == nil && rerr == nil {
		return nil
	}
	t.hooks.RemovePartial(storageKey(t.l2.ns, key), lerr, rerr)
	t.log.Warn("remove failed", keyFields(t.l2.ns, key, Fields{"localErr": lerr, "remoteErr": rerr}))
	return &RemoveError{Key: key, LocalErr: lerr, RemoteErr: rerr}
}

// Close closes L1 and, unless this is a scoped handle, L2.
func (t *TwoLevel[V]) Close(ctx context.Context) error {
	err := t.l1.Close(ctx)
	if t.ownsRemote {
		err = errors.Join(err, t.l2.Close(ctx))
	}
	return err
}
