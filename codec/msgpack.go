package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use and honors `msgpack:"..."` tags.
//
// JSONTags makes the codec read `json:"..."` tags instead, so types already
// annotated for an API can be cached without a second set of tags.
// CompactInts encodes integers in the smallest msgpack form that fits.
type Msgpack[V any] struct {
	JSONTags    bool
	CompactInts bool
}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (m Msgpack[V]) Encode(v V) ([]byte, error) {
	if !m.JSONTags && !m.CompactInts {
		return msgpack.Marshal(v)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if m.JSONTags {
		enc.SetCustomStructTag("json")
	}
	enc.UseCompactInts(m.CompactInts)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	if !m.JSONTags {
		err := msgpack.Unmarshal(b, &v)
		return v, err
	}
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	err := dec.Decode(&v)
	return v, err
}
