package tiercache

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is wrapped by DeserializationError when a remote entry was
// written under a different Options.Schema.
var ErrSchemaMismatch = errors.New("tiercache: schema mismatch")

// ErrRemoteRejected is wrapped by WriteError when the provider refused a write
// (ok=false), typically under memory pressure.
var ErrRemoteRejected = errors.New("tiercache: remote store rejected write")

// Tier names the cache level an error came from.
type Tier string

const (
	TierLocal  Tier = "local"
	TierRemote Tier = "remote"
)

// ConfigError reports a missing or invalid collaborator at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tiercache: invalid config: %s: %s", e.Field, e.Reason)
}

// SerializationError means the value could not be encoded for the remote tier.
// Nothing was written to either tier.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("tiercache: encode %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError means a remote entry exists but does not decode into V.
// It is distinct from a miss.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("tiercache: decode %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// WriteError reports a failed or rejected store write. For a two-level Set with
// Tier == TierRemote the local tier already holds the new value unless
// LocalInvalidated is true.
type WriteError struct {
	Key              string
	Tier             Tier
	LocalInvalidated bool
	Err              error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("tiercache: write %q to %s tier: %v", e.Key, e.Tier, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RemoveError reports which tier failed to drop a key. No rollback happens.
type RemoveError struct {
	Key       string
	LocalErr  error
	RemoteErr error
}

func (e *RemoveError) Error() string {
	switch {
	case e.LocalErr != nil && e.RemoteErr != nil:
		return fmt.Sprintf("tiercache: remove %q failed on both tiers: local=%v; remote=%v",
			e.Key, e.LocalErr, e.RemoteErr)
	case e.LocalErr != nil:
		return fmt.Sprintf("tiercache: remove %q: local tier: %v", e.Key, e.LocalErr)
	case e.RemoteErr != nil:
		return fmt.Sprintf("tiercache: remove %q: remote tier: %v", e.Key, e.RemoteErr)
	default:
		return fmt.Sprintf("tiercache: remove %q: unknown error", e.Key)
	}
}

func (e *RemoveError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.LocalErr != nil {
		errs = append(errs, e.LocalErr)
	}
	if e.RemoteErr != nil {
		errs = append(errs, e.RemoteErr)
	}
	return errs
}

// TypeMismatchError means the local tier holds a value of another type under key.
type TypeMismatchError struct {
	Key  string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("tiercache: key %q holds %s, want %s", e.Key, e.Got, e.Want)
}

// CloneError wraps a failure of the configured cloner.
type CloneError struct {
	Key string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("tiercache: clone %q: %v", e.Key, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }
