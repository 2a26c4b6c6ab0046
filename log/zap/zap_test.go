package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/tiercache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Warn("remote write failed", tiercache.Fields{"key": "k", "err": errors.New("down")})
	l.Debug("noop", nil)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel || e.LoggerName != "tiercache" {
		t.Fatalf("level=%v name=%q", e.Level, e.LoggerName)
	}
	fields := e.ContextMap()
	if fields["key"] != "k" || fields["err"] != "down" {
		t.Fatalf("fields=%v", fields)
	}
}
