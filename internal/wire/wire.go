package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindEntry byte = 1
	hdrLen         = 4 + 1 + 1 + 4 + 4
)

var (
	ErrCorrupt = errors.New("tiercache: corrupt entry")
	// ErrSchema is returned when the frame is valid but tagged with another schema.
	ErrSchema = errors.New("tiercache: entry schema differs")
	magic4    = [...]byte{'T', 'L', 'C', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1=entry) | schema(u32 be) | vlen(u32 be) | payload(vlen)
func Encode(schema uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], schema)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and returns its payload (a sub-slice of b).
// Trailing bytes are rejected.
func Decode(b []byte, schema uint32) ([]byte, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return nil, ErrCorrupt
	}

	off := 6

	got := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact length, no trailing junk
		return nil, ErrCorrupt
	}
	if got != schema {
		return nil, ErrSchema
	}
	return b[off : off+vlen], nil
}
