// Package tiercache implements a two-level cache: a fast in-process store (L1)
// fronting a shared byte store (L2), with an optional cloning decorator so
// callers never alias values held by L1.
//
// Components:
//   - Provider: byte store with TTL (e.g. Redis, BigCache). See package provider.
//   - localstore.Store: in-process store of live values (e.g. Ristretto, Map).
//   - Codec[V]: (de)serializes V <-> []byte for L2 only.
//
// Handles:
//
//	Local[V]        - L1 only, values stored as-is
//	Distributed[V]  - L2 only, every read decodes, every write encodes
//	TwoLevel[V]     - L1 then L2 on read (L1 backfilled), both on write/remove
//	Cloning[V]      - decorator, deep-copies on Get and Set
//
// Keys:
//
//	<ns>:<key>  - in both tiers
//
// Write order for TwoLevel.Set is encode -> L1 -> L2. An encode failure touches
// neither tier. An L2 failure is returned as *WriteError while L1 already holds
// the new value, unless Options.InvalidateLocalOnWriteError is set.
// No lock is taken across tiers: the cache is never the system of record.
//
// Usage:
//
//	cache, err := tiercache.New[Page](tiercache.Options[Page]{
//	    Namespace: "page",
//	    Provider:  redisProvider,
//	    Local:     ristrettoStore,
//	    Codec:     codec.Msgpack[Page]{},
//	    Clone:     true,
//	})
package tiercache
