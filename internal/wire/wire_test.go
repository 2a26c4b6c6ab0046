package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func mustDecode(t *testing.T, b []byte, schema uint32) []byte {
	t.Helper()
	p, err := Decode(b, schema)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return p
}

func TestEntryRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		schema  uint32
		payload []byte
	}{
		{0, nil},
		{42, []byte("hello")},
		{math.MaxUint32, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.schema, tc.payload)
		p := mustDecode(t, enc, tc.schema)
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestEntryRejectsTrailingBytes(t *testing.T) {
	enc := Encode(7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := Decode(enc, 7); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestEntryCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(1, []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic, 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer, 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on bad version")
	}

	// wrong kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = kindEntry + 1
	if _, err := Decode(badKind, 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on bad kind")
	}

	// vlen larger than remaining payload
	badLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badLen[10:14], 1000)
	if _, err := Decode(badLen, 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on oversized vlen")
	}

	// truncated header
	if _, err := Decode(enc[:hdrLen-1], 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on short header")
	}

	// foreign bytes
	if _, err := Decode([]byte("not-wire-format"), 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected error on foreign bytes")
	}
}

func TestEntrySchemaMismatch(t *testing.T) {
	enc := Encode(2, []byte("v2"))
	if _, err := Decode(enc, 3); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	// corruption wins over schema: a broken frame is never reported as a schema change
	enc = append(enc, 0x00)
	if _, err := Decode(enc, 3); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
