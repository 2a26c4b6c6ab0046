// Package codec turns cached values into the byte payloads stored in the
// remote tier. The local tier never encodes.
package codec

// Codec encodes/decodes values V to []byte for storage.
// Implementations must be safe for concurrent use.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
