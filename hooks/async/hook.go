// Package asynchook moves Hooks calls off the cache's hot path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := tiercache.New[Page](tiercache.Options[Page]{
//	    Namespace: "page",
//	    Provider:  provider,
//	    Local:     local,
//	    Codec:     codec.Msgpack[Page]{},
//	    Hooks:     hooks,
//	})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/tiercache"
)

type Hooks struct {
	inner   tiercache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against concurrent try/Close
	closed  bool
	dropped atomic.Uint64
}

var _ tiercache.Hooks = (*Hooks)(nil)

func New(inner tiercache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) LocalHit(k string)          { h.try(func() { h.inner.LocalHit(k) }) }
func (h *Hooks) RemoteHit(k string)         { h.try(func() { h.inner.RemoteHit(k) }) }
func (h *Hooks) Miss(k string)              { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) LocalSetRejected(k string)  { h.try(func() { h.inner.LocalSetRejected(k) }) }
func (h *Hooks) RemoteSetRejected(k string) { h.try(func() { h.inner.RemoteSetRejected(k) }) }
func (h *Hooks) DecodeFailed(k, r string)   { h.try(func() { h.inner.DecodeFailed(k, r) }) }
func (h *Hooks) RemoteWriteFailed(k string, err error, inv bool) {
	h.try(func() { h.inner.RemoteWriteFailed(k, err, inv) })
}
func (h *Hooks) RemovePartial(k string, le, re error) {
	h.try(func() { h.inner.RemovePartial(k, le, re) })
}
