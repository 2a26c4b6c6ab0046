// Package localstore defines the in-process store used as the L1 tier.
//
// Unlike provider.Provider, a Store holds live values: no encoding happens and
// Get returns the exact value (same pointer, same map) that was passed to Set.
// Eviction (size or time based) is owned by the store.
package localstore

import "time"

// Store is an in-process key -> value store.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true) on hit; (nil, false) on miss or expiry.
	Get(key string) (any, bool)

	// Set stores value with the given TTL (<= 0 => no expiry).
	// Returns false when the store refused the write under pressure.
	Set(key string, value any, ttl time.Duration) bool

	// Del removes a key. Missing keys are a no-op.
	Del(key string)

	// Close releases resources.
	Close() error
}
