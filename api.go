package tiercache

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/tiercache/codec"
	ls "github.com/unkn0wn-root/tiercache/localstore"
	pr "github.com/unkn0wn-root/tiercache/provider"
)

// Cache is the point-lookup handle every variant implements:
// Local, Distributed, TwoLevel and the Cloning decorator.
// V is the caller's value type.
type Cache[V any] interface {
	// Get returns (v, true, nil) on hit and (zero, false, nil) on a plain miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	// Set overwrites any entry under key. ttl 0 => handle default; ttl < 0 => no expiry hint.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Remove is idempotent; removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases collaborators the handle owns.
	Close(ctx context.Context) error
}

// Mode selects which handle New builds.
type Mode int

const (
	// ModeTwoLevel fronts the provider with a local store (default).
	ModeTwoLevel Mode = iota
	// ModeDistributed uses the provider only.
	ModeDistributed
)

func (m Mode) String() string {
	switch m {
	case ModeTwoLevel:
		return "two-level"
	case ModeDistributed:
		return "distributed"
	default:
		return "unknown"
	}
}

// Options configure New and the individual constructors.
// Namespace, Provider and Codec are required; Local is required for ModeTwoLevel.
type Options[V any] struct {
	// Required
	Namespace string      // logical namespace to avoid collisions. e.g. "page", "site", "post"
	Provider  pr.Provider // L2 byte store
	Codec     c.Codec[V]

	Local ls.Store // L1 store; required for ModeTwoLevel
	Mode  Mode

	// Clone wraps the handle in the cloning decorator.
	Clone  bool
	Cloner func(V) (V, error) // nil => Cloneable[V] or a codec round-trip

	// Schema tags remote entries; a reader with a different Schema gets a DeserializationError.
	Schema uint32

	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	DefaultTTL time.Duration // 0 => 10m
	// LocalTTL bounds L1 entries; 0 => DefaultTTL. On Set it is capped by the
	// remote ttl. A backfill after an L2 hit cannot see the remaining remote
	// lifetime and uses LocalTTL as is, so a backfilled entry may outlive a
	// short-lived L2 entry by up to LocalTTL.
	LocalTTL time.Duration

	// InvalidateLocalOnWriteError drops the L1 entry when the L2 write fails,
	// so a failed Set never leaves the new value visible locally.
	InvalidateLocalOnWriteError bool
}

// New builds the handle selected by opts.Mode and opts.Clone.
// Missing collaborators are reported as *ConfigError.
func New[V any](opts Options[V]) (Cache[V], error) {
	var (
		h   Cache[V]
		err error
	)
	switch opts.Mode {
	case ModeTwoLevel:
		h, err = NewTwoLevel[V](opts)
	case ModeDistributed:
		h, err = NewDistributed[V](opts)
	default:
		return nil, &ConfigError{Field: "Mode", Reason: fmt.Sprintf("unknown mode %d", int(opts.Mode))}
	}
	if err != nil {
		return nil, err
	}
	if !opts.Clone {
		return h, nil
	}
	return NewCloning[V](h, opts)
}
