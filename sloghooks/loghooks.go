// Package sloghooks logs tiercache events through log/slog with sampling and
// key redaction.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tiercache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery          uint64
	MissEvery         uint64
	DecodeFailedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr    atomic.Uint64
	missCtr   atomic.Uint64
	decodeCtr atomic.Uint64
}

var _ tiercache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LocalHit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("tiercache.local_hit", "key", h.redact(storageKey))
}

func (h *Hooks) RemoteHit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("tiercache.remote_hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("tiercache.miss", "key", h.redact(storageKey))
}

func (h *Hooks) LocalSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("tiercache.local_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) RemoteSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tiercache.remote_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) DecodeFailed(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeCtr) {
		return
	}
	h.l.Warn("tiercache.decode_failed",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) RemoteWriteFailed(storageKey string, err error, localInvalidated bool) {
	if h.l == nil {
		return
	}
	h.l.Error("tiercache.remote_write_failed",
		"key", h.redact(storageKey),
		"err", err,
		"local_invalidated", localInvalidated)
}

func (h *Hooks) RemovePartial(storageKey string, localErr, remoteErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("tiercache.remove_partial",
		"key", h.redact(storageKey),
		"local_err", localErr,
		"remote_err", remoteErr)
}
