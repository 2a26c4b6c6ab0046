package tiercache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	c "github.com/unkn0wn-root/tiercache/codec"
	ls "github.com/unkn0wn-root/tiercache/localstore"
	pr "github.com/unkn0wn-root/tiercache/provider"
)

type memEntry struct {
	v   []byte
	ttl time.Duration
}

// memProvider is an instrumented in-memory Provider.
type memProvider struct {
	mu     sync.Mutex
	m      map[string]memEntry
	gets   int
	sets   int
	dels   int
	closed bool

	getErr error
	setErr error
	delErr error
	reject bool
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	if p.setErr != nil {
		return false, p.setErr
	}
	if p.reject {
		return false, nil
	}
	p.m[key] = memEntry{v: value, ttl: ttl}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dels++
	if p.delErr != nil {
		return p.delErr
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *memProvider) entry(key string) (memEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	return e, ok
}

func (p *memProvider) getCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets
}

// recHooks counts events by name.
type recHooks struct {
	NopHooks
	mu     sync.Mutex
	counts map[string]int
	last   map[string]string
}

func newRecHooks() *recHooks {
	return &recHooks{counts: make(map[string]int), last: make(map[string]string)}
}

func (h *recHooks) add(ev, detail string) {
	h.mu.Lock()
	h.counts[ev]++
	h.last[ev] = detail
	h.mu.Unlock()
}

func (h *recHooks) count(ev string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[ev]
}

func (h *recHooks) lastOf(ev string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last[ev]
}

func (h *recHooks) LocalHit(k string)          { h.add("local_hit", k) }
func (h *recHooks) RemoteHit(k string)         { h.add("remote_hit", k) }
func (h *recHooks) Miss(k string)              { h.add("miss", k) }
func (h *recHooks) LocalSetRejected(k string)  { h.add("local_rejected", k) }
func (h *recHooks) RemoteSetRejected(k string) { h.add("remote_rejected", k) }
func (h *recHooks) DecodeFailed(k, r string)   { h.add("decode_failed", r) }
func (h *recHooks) RemoteWriteFailed(k string, _ error, inv bool) {
	if inv {
		h.add("write_failed", "invalidated")
		return
	}
	h.add("write_failed", "kept")
}
func (h *recHooks) RemovePartial(k string, _, _ error) { h.add("remove_partial", k) }

// recLogger keeps every entry it is given.
type recLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level, msg string
	f          Fields
}

func (l *recLogger) add(level, msg string, f Fields) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, f: f})
	l.mu.Unlock()
}

func (l *recLogger) Debug(msg string, f Fields) { l.add("debug", msg, f) }
func (l *recLogger) Info(msg string, f Fields)  { l.add("info", msg, f) }
func (l *recLogger) Warn(msg string, f Fields)  { l.add("warn", msg, f) }
func (l *recLogger) Error(msg string, f Fields) { l.add("error", msg, f) }

type page struct {
	ID    string   `json:"id" msgpack:"id"`
	Title string   `json:"title" msgpack:"title"`
	Tags  []string `json:"tags" msgpack:"tags"`
}

// Clone makes *page a Cloneable[*page].
func (p *page) Clone() *page {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp
}

type fixture struct {
	mp    *memProvider
	local *ls.Map
	hooks *recHooks
}

func newFixture() fixture {
	return fixture{mp: newMemProvider(), local: ls.NewMap(0), hooks: newRecHooks()}
}

func opts[V any](f fixture, cd c.Codec[V], mut func(*Options[V])) Options[V] {
	o := Options[V]{
		Namespace: "page",
		Provider:  f.mp,
		Local:     f.local,
		Codec:     cd,
		Hooks:     f.hooks,
	}
	if mut != nil {
		mut(&o)
	}
	return o
}

func TestNewRequiresCollaborators(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name  string
		mut   func(*Options[page])
		field string
	}{
		{"no provider", func(o *Options[page]) { o.Provider = nil }, "Provider"},
		{"no codec", func(o *Options[page]) { o.Codec = nil }, "Codec"},
		{"no namespace", func(o *Options[page]) { o.Namespace = "" }, "Namespace"},
		{"no local for two-level", func(o *Options[page]) { o.Local = nil }, "Local"},
		{"no provider with clone", func(o *Options[page]) {
			o.Provider = nil
			o.Clone = true
		}, "Provider"},
		{"bad mode", func(o *Options[page]) { o.Mode = Mode(42) }, "Mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := New[page](opts[page](f, c.JSON[page]{}, tc.mut))
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("want *ConfigError, got %T (%v)", err, err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field=%q want %q", ce.Field, tc.field)
			}
			if h != nil {
				t.Fatalf("handle must be nil on error")
			}
		})
	}
}

func TestNewSelectsVariant(t *testing.T) {
	f := newFixture()

	h, err := New[page](opts[page](f, c.JSON[page]{}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(*TwoLevel[page]); !ok {
		t.Fatalf("default mode should build *TwoLevel, got %T", h)
	}

	h, err = New[page](opts[page](f, c.JSON[page]{}, func(o *Options[page]) {
		o.Mode = ModeDistributed
		o.Local = nil // not needed without L1
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(*Distributed[page]); !ok {
		t.Fatalf("distributed mode should build *Distributed, got %T", h)
	}

	h, err = New[page](opts[page](f, c.JSON[page]{}, func(o *Options[page]) { o.Clone = true }))
	if err != nil {
		t.Fatal(err)
	}
	cl, ok := h.(*Cloning[page])
	if !ok {
		t.Fatalf("clone=true should build *Cloning, got %T", h)
	}
	if _, ok := cl.inner.(*TwoLevel[page]); !ok {
		t.Fatalf("cloning should wrap *TwoLevel, got %T", cl.inner)
	}
}

func TestTTLResolution(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	d, err := NewDistributed[page](opts[page](f, c.JSON[page]{}, func(o *Options[page]) {
		o.DefaultTTL = time.Hour
	}))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		in, want time.Duration
	}{
		{0, time.Hour},
		{-1, 0},
		{time.Minute, time.Minute},
	}
	for _, tc := range cases {
		if err := d.Set(ctx, "k", page{ID: "k"}, tc.in); err != nil {
			t.Fatal(err)
		}
		e, ok := f.mp.entry("page:k")
		if !ok || e.ttl != tc.want {
			t.Fatalf("ttl in=%v: stored=%v ok=%v want %v", tc.in, e.ttl, ok, tc.want)
		}
	}
}

func TestLocalTypeMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l, err := NewLocal[page](opts[page](f, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	f.local.Set("page:k", "not a page", 0)

	_, ok, err := l.Get(ctx, "k")
	var tm *TypeMismatchError
	if !errors.As(err, &tm) || ok {
		t.Fatalf("want *TypeMismatchError, got ok=%v err=%v", ok, err)
	}
	if tm.Want != "tiercache.page" || tm.Got != "string" {
		t.Fatalf("mismatch detail: %+v", tm)
	}
}

func TestLocalStoresLiveValues(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l, err := NewLocal[*page](opts[*page](f, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	p := &page{ID: "1"}
	if err := l.Set(ctx, "1", p, 0); err != nil {
		t.Fatal(err)
	}
	got, ok, err := l.Get(ctx, "1")
	if err != nil || !ok || got != p {
		t.Fatalf("local Get should return the same pointer: ok=%v err=%v same=%v", ok, err, got == p)
	}
	if err := l.Remove(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if err := l.Remove(ctx, "1"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, ok, _ := l.Get(ctx, "1"); ok {
		t.Fatalf("Get after Remove should miss")
	}
	if f.hooks.count("local_hit") != 1 || f.hooks.count("miss") != 1 {
		t.Fatalf("hooks: %v", f.hooks.counts)
	}
}

func TestLocalSetRejectedIsNotAnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.local = ls.NewMap(1)
	l, err := NewLocal[page](opts[page](f, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Set(ctx, "a", page{ID: "a"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.Set(ctx, "b", page{ID: "b"}, 0); err != nil {
		t.Fatalf("rejected local write must not error: %v", err)
	}
	if f.hooks.count("local_rejected") != 1 {
		t.Fatalf("expected one local rejection, got %d", f.hooks.count("local_rejected"))
	}
}
