package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/tiercache"
)

func TestAttrsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))}

	l.Info("backfill", tiercache.Fields{"z": 1, "a": 2, "m": 3})

	out := buf.String()
	ia, im, iz := strings.Index(out, "a=2"), strings.Index(out, "m=3"), strings.Index(out, "z=1")
	if ia < 0 || im < 0 || iz < 0 || !(ia < im && im < iz) {
		t.Fatalf("attrs not sorted: %s", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Fatalf("level missing: %s", out)
	}
}
