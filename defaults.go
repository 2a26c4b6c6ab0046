package tiercache

import "time"

const defaultTTL = 10 * time.Minute

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// storageKey isolates user keys by namespace.
func storageKey(ns, key string) string {
	return ns + ":" + key
}

// ttlFor resolves the per-call ttl against a handle default.
// Negative means "no expiry" and is passed to stores as 0.
func ttlFor(ttl, def time.Duration) time.Duration {
	switch {
	case ttl < 0:
		return 0
	case ttl == 0:
		return def
	default:
		return ttl
	}
}
