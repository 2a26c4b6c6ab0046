package tiercache

import (
	"context"
	"fmt"
	"reflect"
	"time"

	ls "github.com/unkn0wn-root/tiercache/localstore"
)

// Local is the L1 handle: values go into an in-process store as-is.
// Returned values alias the stored ones; wrap in Cloning to avoid that.
type Local[V any] struct {
	ns    string
	store ls.Store
	ttl   time.Duration
	log   Logger
	hooks Hooks
}

var _ Cache[struct{}] = (*Local[struct{}])(nil)

// NewLocal builds an L1-only handle. Namespace and Local are required.
func NewLocal[V any](opts Options[V]) (*Local[V], error) {
	if opts.Namespace == "" {
		return nil, &ConfigError{Field: "Namespace", Reason: "namespace is required"}
	}
	if opts.Local == nil {
		return nil, &ConfigError{Field: "Local", Reason: "a local store is required"}
	}
	def := coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	return &Local[V]{
		ns:    opts.Namespace,
		store: opts.Local,
		ttl:   coalesce[time.Duration](opts.LocalTTL, def),
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

func (l *Local[V]) Get(_ context.Context, key string) (V, bool, error) {
	v, ok, err := l.get(key)
	if err != nil {
		return v, false, err
	}
	if !ok {
		l.hooks.Miss(storageKey(l.ns, key))
		return v, false, nil
	}
	l.hooks.LocalHit(storageKey(l.ns, key))
	return v, true, nil
}

func (l *Local[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	l.set(key, value, ttlFor(ttl, l.ttl))
	return nil
}

func (l *Local[V]) Remove(_ context.Context, key string) error {
	l.store.Del(storageKey(l.ns, key))
	return nil
}

func (l *Local[V]) Close(context.Context) error {
	return l.store.Close()
}

func (l *Local[V]) get(key string) (V, bool, error) {
	var zero V
	k := storageKey(l.ns, key)
	raw, ok := l.store.Get(k)
	if !ok {
		return zero, false, nil
	}
	if raw == nil {
		// nil stored for an interface-typed V
		return zero, true, nil
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false, &TypeMismatchError{
			Key:  key,
			Want: reflect.TypeOf((*V)(nil)).Elem().String(),
			Got:  fmt.Sprintf("%T", raw),
		}
	}
	return v, true, nil
}

// set writes with an already resolved ttl.
func (l *Local[V]) set(key string, value V, ttl time.Duration) {
	k := storageKey(l.ns, key)
	if !l.store.Set(k, value, ttl) {
		l.hooks.LocalSetRejected(k)
		l.log.Debug("local Set rejected by store (pressure)", keyFields(l.ns, key, nil))
	}
}

// localTTL caps the L1 lifetime by the remote ttl so L1 never outlives L2.
func (l *Local[V]) localTTL(remote time.Duration) time.Duration {
	if remote > 0 && remote < l.ttl {
		return remote
	}
	return l.ttl
}
