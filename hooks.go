package tiercache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Get served from L1 without touching L2.
	LocalHit(storageKey string)
	// Get missed L1 and was served from L2 (L1 backfilled).
	RemoteHit(storageKey string)
	// Both tiers missed.
	Miss(storageKey string)

	// The local store refused a write (admission/eviction pressure).
	LocalSetRejected(storageKey string)
	// Provider returned ok=false on Set; the Set also fails with ErrRemoteRejected.
	RemoteSetRejected(storageKey string)

	// A remote entry could not be decoded.
	// reason ∈ {"corrupt", "schema_mismatch", "value_decode"}
	DecodeFailed(storageKey, reason string)

	// L1 holds a value that L2 never received.
	// localInvalidated reports whether the L1 entry was dropped afterwards.
	RemoteWriteFailed(storageKey string, err error, localInvalidated bool)

	// Remove failed on at least one tier.
	RemovePartial(storageKey string, localErr, remoteErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LocalHit(string)                       {}
func (NopHooks) RemoteHit(string)                      {}
func (NopHooks) Miss(string)                           {}
func (NopHooks) LocalSetRejected(string)               {}
func (NopHooks) RemoteSetRejected(string)              {}
func (NopHooks) DecodeFailed(string, string)           {}
func (NopHooks) RemoteWriteFailed(string, error, bool) {}
func (NopHooks) RemovePartial(string, error, error)    {}
