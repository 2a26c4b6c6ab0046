package tiercache

import (
	"context"
	"reflect"
	"time"

	c "github.com/unkn0wn-root/tiercache/codec"
)

// Cloneable is implemented by values that know how to deep-copy themselves.
// Clone must not share mutable state (maps, slices, pointers) with the receiver.
type Cloneable[V any] interface {
	Clone() V
}

// Cloning decorates a handle so callers never share memory with the cache:
// Get returns a copy of what the inner handle returned, and Set stores a copy
// of what the caller passed in.
type Cloning[V any] struct {
	inner Cache[V]
	clone func(V) (V, error)
}

var _ Cache[struct{}] = (*Cloning[struct{}])(nil)

// NewCloning wraps inner. The copy function is, in order: opts.Cloner,
// V's own Clone method, or a round trip through opts.Codec.
func NewCloning[V any](inner Cache[V], opts Options[V]) (*Cloning[V], error) {
	if inner == nil {
		return nil, &ConfigError{Field: "inner", Reason: "a cache to wrap is required"}
	}
	fn, err := clonerFor(opts)
	if err != nil {
		return nil, err
	}
	return &Cloning[V]{inner: inner, clone: fn}, nil
}

func clonerFor[V any](opts Options[V]) (func(V) (V, error), error) {
	if opts.Cloner != nil {
		return opts.Cloner, nil
	}
	var zero V
	if _, ok := any(zero).(Cloneable[V]); ok {
		return func(v V) (V, error) {
			if isNil(v) {
				return v, nil
			}
			return any(v).(Cloneable[V]).Clone(), nil
		}, nil
	}
	if opts.Codec != nil {
		return CodecCloner(opts.Codec), nil
	}
	return nil, &ConfigError{Field: "Cloner", Reason: "no Cloner, V has no Clone method and no Codec is set"}
}

// isNil reports a nil pointer, map, slice or interface held in v.
// Clone is never called on such values.
func isNil[V any](v V) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// CodecCloner deep-copies through an encode/decode round trip.
// It copies only what the codec preserves (JSON drops unexported fields).
func CodecCloner[V any](cd c.Codec[V]) func(V) (V, error) {
	return func(v V) (V, error) {
		b, err := cd.Encode(v)
		if err != nil {
			var zero V
			return zero, err
		}
		return cd.Decode(b)
	}
}

func (cl *Cloning[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok, err := cl.inner.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	cp, err := cl.clone(v)
	if err != nil {
		var zero V
		return zero, false, &CloneError{Key: key, Err: err}
	}
	return cp, true, nil
}

func (cl *Cloning[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	cp, err := cl.clone(value)
	if err != nil {
		return &CloneError{Key: key, Err: err}
	}
	return cl.inner.Set(ctx, key, cp, ttl)
}

func (cl *Cloning[V]) Remove(ctx context.Context, key string) error {
	return cl.inner.Remove(ctx, key)
}

func (cl *Cloning[V]) Close(ctx context.Context) error {
	return cl.inner.Close(ctx)
}
